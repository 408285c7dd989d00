// Command hubctl manages the vault password of a local idea hub without going
// through the HTTP API. It is also the only way to replace a forgotten
// password: setup -force overwrites the record, and data sealed with the old
// password stays unreadable.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/db"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/logger"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/passwords"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/repository"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
)

var (
	version   string
	buildDate string
)

// lifecycle is the part of the password service hubctl drives.
type lifecycle interface {
	Info(ctx context.Context) models.SecurityInfo
	Setup(ctx context.Context, password string) error
	ForceSetup(ctx context.Context, password string) error
	Verify(ctx context.Context, password string) bool
	Change(ctx context.Context, current, next string) error
	Reset(ctx context.Context) error
}

// run executes one command against auth and reports to out.
func run(ctx context.Context, cmd string, force bool, auth lifecycle, src *passwordSource, out io.Writer) error {
	switch cmd {
	case "status":
		info := auth.Info(ctx)
		if !info.IsSetup {
			fmt.Fprintln(out, "Password: not set up")
			return nil
		}
		fmt.Fprintln(out, "Password: set up")
		if info.CreatedAt != nil {
			fmt.Fprintf(out, "Created: %s\n", info.CreatedAt.Local().Format(time.RFC1123))
		}
		if info.LastAccessed != nil {
			fmt.Fprintf(out, "Last accessed: %s\n", info.LastAccessed.Local().Format(time.RFC1123))
		}
		return nil

	case "setup":
		pw, err := src.New(envPassword)
		if err != nil {
			return err
		}
		if force {
			err = auth.ForceSetup(ctx, pw)
		} else {
			err = auth.Setup(ctx, pw)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Password set up successfully")
		return nil

	case "change":
		current, err := src.Current()
		if err != nil {
			return err
		}
		next, err := src.New(envNewPassword)
		if err != nil {
			return err
		}
		if err := auth.Change(ctx, current, next); err != nil {
			return err
		}
		fmt.Fprintln(out, "Password changed successfully")
		return nil

	case "reset":
		pw, err := src.Current()
		if err != nil {
			return err
		}
		if !auth.Verify(ctx, pw) {
			return service.ErrWrongPassword
		}
		if err := auth.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Password removed. Encrypted fields stay sealed with the old password.")
		return nil

	default:
		return fmt.Errorf("unknown command %q (status|setup|change|reset)", cmd)
	}
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var (
		cmd     string
		cfgPath string
		force   bool
		showVer bool
	)
	flag.StringVar(&cmd, "cmd", "status", "command: status | setup | change | reset")
	flag.StringVar(&cfgPath, "c", config.Default().Config, "path to config file")
	flag.BoolVar(&force, "force", false, "setup: overwrite an existing password")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("hubctl\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return 0
	}

	options, err := config.ParseArgs([]string{"-c", cfgPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		return 1
	}

	lg := logger.New()
	if err := lg.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		return 1
	}
	defer func() { _ = lg.Log.Sync() }()

	store, err := passwords.Open(options.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: open password store: %v\n", err)
		return 1
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	// Only a password change touches stored rows.
	var reenc service.Reencrypter
	if cmd == "change" {
		conn, err := db.Open(options.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hubctl: open database: %v\n", err)
			return 1
		}
		defer conn.Close()
		reenc = repository.NewReencryptor(conn)
	}

	auth := service.NewAuthService(store, crypto.NewPool(options.Crypto.Workers), reenc, lg.Log)
	src := &passwordSource{
		in:     bufio.NewReader(os.Stdin),
		fd:     int(os.Stdin.Fd()),
		out:    os.Stderr,
		getenv: os.Getenv,
	}
	if err := run(context.Background(), cmd, force, auth, src, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		return 1
	}
	return 0
}
