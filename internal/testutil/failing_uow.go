package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/tally/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects Err into one write of a
// transaction so rollback paths can be exercised.
//
// With Match empty, the FailOn-th ExecContext call fails (counting from 1).
// With Match set, the FailOn-th ExecContext whose SQL contains Match fails.
// Reads pass through untouched.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	// Execs is the number of ExecContext calls seen by the last transaction.
	Execs int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, match: u.Match, err: u.Err}
	fnErr := fn(ctx, wrapped)
	u.Execs = wrapped.total.Load()
	if fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	total   atomic.Int32
	matched atomic.Int32
	failOn  int32
	match   string
	err     error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.total.Add(1)
	if f.match == "" || strings.Contains(query, f.match) {
		if f.matched.Add(1) == f.failOn {
			return nil, f.err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
