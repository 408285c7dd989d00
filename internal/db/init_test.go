package db_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/db"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "some=random", "ping postgres"},
		{"empty DSN", "", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestInitSQLite_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ideas.db")
	conn, err := db.Open(config.Database{Driver: config.DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"ideas", "subtasks", "ai_tools"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Schema creation is idempotent.
	again, err := db.InitSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again.Close()
}

func TestOpen_Errors(t *testing.T) {
	if _, err := db.Open(config.Database{Driver: "oracle"}); err == nil {
		t.Error("Open accepted an unknown driver")
	}
	if _, err := db.InitSQLite(""); err == nil {
		t.Error("InitSQLite accepted an empty path")
	}
}
