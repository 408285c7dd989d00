// Package config provides functionality for managing configuration options
// for the application using command-line flags, a YAML config file, a .env
// file and environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Password store backends.
const (
	StoreFile    = "file"
	StoreBolt    = "bolt"
	StoreKeyring = "keyring"
	StoreVault   = "vault"
	StoreMemory  = "memory"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `yaml:"addr"`

	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	Database Database `yaml:"database"`
	Store    Store    `yaml:"store"`
	Redis    Redis    `yaml:"redis"`
	Groq     Groq     `yaml:"groq"`
	Tavily   Tavily   `yaml:"tavily"`
	Crypto   Crypto   `yaml:"crypto"`

	// Config is the path to the YAML config file.
	Config string `yaml:"-"`
}

// Database selects the SQL driver and its connection string.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// ArchiveRetention is how long archived ideas are kept; zero keeps them forever.
	ArchiveRetention time.Duration `yaml:"archive_retention"`
}

// Store configures where the password record lives.
type Store struct {
	Backend      string `yaml:"backend"`
	Path         string `yaml:"path"`
	KeyringUser  string `yaml:"keyring_user"`
	VaultAddress string `yaml:"vault_address"`
	VaultToken   string `yaml:"-"`
	VaultMount   string `yaml:"vault_mount"`
	VaultPath    string `yaml:"vault_path"`
}

// Redis configures the research cache. An empty Addr disables it.
type Redis struct {
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

// Groq configures the chat and transcription client.
type Groq struct {
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Tavily configures the web search client.
type Tavily struct {
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
}

// Crypto tunes key derivation.
type Crypto struct {
	// Workers bounds concurrent PBKDF2 derivations; zero means one per CPU.
	Workers int `yaml:"workers"`
}

// Default returns the options used when nothing overrides them.
func Default() *Options {
	return &Options{
		Addr:     "localhost:8080",
		LogLevel: "info",
		Database: Database{Driver: DriverSQLite, DSN: "data/ideas.db"},
		Store:    Store{Backend: StoreFile, Path: "data/security.json"},
		Redis:    Redis{TTL: 24 * time.Hour},
		Groq:     Groq{BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile"},
		Tavily:   Tavily{BaseURL: "https://api.tavily.com"},
		Config:   "config.yaml",
	}
}

// Parse parses os.Args and the environment. It exits on a malformed config
// file.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("error while parsing config: %v", err)
	}
	return options
}

// ParseArgs resolves options in order: defaults, command-line flags, the
// YAML config file, then environment variables (a .env file in the working
// directory is loaded first and never overrides the real environment).
func ParseArgs(args []string) (*Options, error) {
	options := Default()

	flags := flag.NewFlagSet("idea-hub", flag.ContinueOnError)
	flags.StringVar(&options.Addr, "a", options.Addr, "run on ip:port server")
	flags.StringVar(&options.Database.DSN, "d", options.Database.DSN, "database DSN")
	flags.StringVar(&options.Database.Driver, "driver", options.Database.Driver, "database driver (postgres|sqlite3)")
	flags.StringVar(&options.Store.Backend, "store", options.Store.Backend, "password store backend (file|bolt|keyring|vault)")
	flags.StringVar(&options.Store.Path, "store-path", options.Store.Path, "password store file path")
	flags.StringVar(&options.LogLevel, "l", options.LogLevel, "log level")
	flags.IntVar(&options.Crypto.Workers, "workers", options.Crypto.Workers, "concurrent key derivations")
	flags.StringVar(&options.Config, "config", options.Config, "path to config file")
	flags.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := loadFile(options.Config, options); err != nil {
			return nil, err
		}
	}

	applyEnv(options)
	return options, nil
}

func loadFile(path string, options *Options) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, options); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func applyEnv(o *Options) {
	setString(&o.Addr, "SERVER_ADDRESS")
	setString(&o.LogLevel, "LOG_LEVEL")
	setString(&o.Database.DSN, "DATABASE_DSN")
	setString(&o.Database.Driver, "DATABASE_DRIVER")
	setString(&o.Store.Backend, "PASSWORD_STORE")
	setString(&o.Store.Path, "PASSWORD_STORE_PATH")
	setString(&o.Store.VaultAddress, "VAULT_ADDR")
	setString(&o.Store.VaultToken, "VAULT_TOKEN")
	setString(&o.Redis.Addr, "REDIS_ADDR")
	setString(&o.Groq.APIKey, "GROQ_API_KEY")
	setString(&o.Tavily.APIKey, "TAVILY_API_KEY")

	if v := os.Getenv("CRYPTO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.Crypto.Workers = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
