package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
)

// sealedColumns lists, per table, the columns that may hold envelopes.
var sealedColumns = []struct {
	table   string
	columns []string
}{
	{"ideas", []string{"description", "transcript", "summary", "reel_links"}},
	{"ai_tools", []string{"description", "notes"}},
}

// Reencryptor moves every stored envelope from one password to another.
type Reencryptor struct {
	// DB is the database handle the rewrite runs on.
	DB *sql.DB
}

// NewReencryptor creates a Reencryptor using the provided *sql.DB.
func NewReencryptor(db *sql.DB) *Reencryptor {
	return &Reencryptor{DB: db}
}

type sealedRow struct {
	id     string
	values []sql.NullString
}

// Reencrypt opens every envelope with from and seals it again with to, all
// inside one transaction. commit runs after the rewrite and before the
// transaction commits; an error from it rolls everything back. Plaintext
// values and envelopes that from cannot open are left as they are.
func (r *Reencryptor) Reencrypt(ctx context.Context, from, to *crypto.Session, commit func(context.Context) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range sealedColumns {
		if err := reencryptTable(ctx, tx, t.table, t.columns, from, to); err != nil {
			return err
		}
	}

	if err := commit(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func reencryptTable(ctx context.Context, tx *sql.Tx, table string, columns []string, from, to *crypto.Session) error {
	query := "SELECT id"
	for _, c := range columns {
		query += ", " + c
	}
	query += " FROM " + table

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	// Read everything first: lib/pq cannot execute while a result set is open.
	var pending []sealedRow
	for rows.Next() {
		row := sealedRow{values: make([]sql.NullString, len(columns))}
		dest := []any{&row.id}
		for i := range row.values {
			dest = append(dest, &row.values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: %w", table, err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("select %s: %w", table, err)
	}
	rows.Close()

	update := "UPDATE " + table + " SET "
	for i, c := range columns {
		if i > 0 {
			update += ", "
		}
		update += fmt.Sprintf("%s = $%d", c, i+1)
	}
	update += fmt.Sprintf(" WHERE id = $%d", len(columns)+1)

	for _, row := range pending {
		changed := false
		args := make([]any, 0, len(columns)+1)
		for _, v := range row.values {
			nv, ok, err := rewrap(ctx, v, from, to)
			if err != nil {
				return fmt.Errorf("re-encrypt %s %s: %w", table, row.id, err)
			}
			changed = changed || ok
			args = append(args, nv)
		}
		if !changed {
			continue
		}
		args = append(args, row.id)
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return fmt.Errorf("update %s %s: %w", table, row.id, err)
		}
	}
	return nil
}

// rewrap returns v sealed under to and true, or v unchanged and false when v
// is not an envelope that from can open.
func rewrap(ctx context.Context, v sql.NullString, from, to *crypto.Session) (sql.NullString, bool, error) {
	if !v.Valid || !crypto.IsSealed(v.String) {
		return v, false, nil
	}
	plain, err := from.Open(ctx, v.String)
	if errors.Is(err, crypto.ErrDecryptionFailed) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	sealed, err := to.Seal(ctx, plain)
	if err != nil {
		return v, false, err
	}
	return sql.NullString{String: sealed, Valid: true}, true, nil
}
