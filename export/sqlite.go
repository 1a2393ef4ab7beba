package export

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/wippyai/ksm-disasm/script"
)

const schema = `
DROP TABLE IF EXISTS functions;
DROP TABLE IF EXISTS imports;
DROP TABLE IF EXISTS thread_refs;
DROP TABLE IF EXISTS instructions;
CREATE TABLE functions (
	idx INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	name TEXT,
	public INTEGER NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	open_scopes INTEGER NOT NULL
);
CREATE TABLE imports (
	id INTEGER NOT NULL,
	name TEXT,
	field INTEGER NOT NULL,
	type TEXT NOT NULL
);
CREATE TABLE thread_refs (
	kind TEXT NOT NULL,
	target INTEGER NOT NULL REFERENCES functions(idx),
	source INTEGER NOT NULL REFERENCES functions(idx)
);
CREATE TABLE instructions (
	function INTEGER NOT NULL REFERENCES functions(idx),
	seq INTEGER NOT NULL,
	offset INTEGER NOT NULL,
	opcode INTEGER NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY (function, seq)
);
CREATE INDEX thread_refs_source ON thread_refs(source);
`

// WriteSQLite stores the decoded program p in the SQLite database at path,
// replacing the tables of a previous export.
func WriteSQLite(ctx context.Context, path string, p *script.Program) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := insert(ctx, tx, p); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	Logger().Debug("sqlite export written", zap.String("path", path), zap.Int("functions", len(p.Functions)))
	return nil
}

func insert(ctx context.Context, tx *sql.Tx, p *script.Program) error {
	for _, im := range p.Imports {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO imports (id, name, field, type) VALUES (?, ?, ?, ?)",
			im.ID, nullString(script.DisplayName(im)), im.Field, im.Type.String(),
		); err != nil {
			return fmt.Errorf("inserting import 0x%x: %w", im.ID, err)
		}
	}

	fnStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO functions (idx, id, name, public, status, error, open_scopes) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing functions: %w", err)
	}
	defer fnStmt.Close()
	refStmt, err := tx.PrepareContext(ctx, "INSERT INTO thread_refs (kind, target, source) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing thread_refs: %w", err)
	}
	defer refStmt.Close()
	inStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO instructions (function, seq, offset, opcode, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing instructions: %w", err)
	}
	defer inStmt.Close()

	for _, fn := range p.Functions {
		f := function(p, fn)
		if _, err := fnStmt.ExecContext(ctx,
			fn.Index, fn.ID, nullString(f.Name), fn.Public, f.Status, nullString(f.Error), fn.OpenScopes,
		); err != nil {
			return fmt.Errorf("inserting function %s: %w", fn, err)
		}
		for _, src := range fn.ThreadRefs {
			if _, err := refStmt.ExecContext(ctx, "thread", fn.Index, src); err != nil {
				return fmt.Errorf("inserting thread ref of %s: %w", fn, err)
			}
		}
		for _, src := range fn.Thread2Refs {
			if _, err := refStmt.ExecContext(ctx, "thread2", fn.Index, src); err != nil {
				return fmt.Errorf("inserting thread2 ref of %s: %w", fn, err)
			}
		}
		for seq, in := range f.Instructions {
			if _, err := inStmt.ExecContext(ctx, fn.Index, seq, in.Offset, in.Opcode, in.Text); err != nil {
				return fmt.Errorf("inserting instruction %d of %s: %w", seq, fn, err)
			}
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
