// Package journal is the document store behind blogbox. It keeps the
// registered users and the blog posts in a single sqlite database.
//
// The store enforces uniqueness of user emails and post texts, callers
// rely on that to settle concurrent inserts (see UniqueViolation).
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

type (
	Store struct {
		db  *sql.DB
		now func() time.Time
	}
)

func openDatabase(ctx context.Context, file string) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory to store %v, cause %w", file, err)
	}
	connstr := fmt.Sprintf("file:%v?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping journal %v, cause %w", file, err)
	}
	return conn, nil
}

// Open opens (or creates) the journal stored at file
func Open(ctx context.Context, file string) (*Store, error) {
	conn, err := openDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, now: func() time.Time { return time.Now().UTC() }}
	err = s.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init journal %v, cause %w", file, err)
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id text not null primary key,
			username text not null,
			email text not null,
			password_hash text not null
		)`,
		`create unique index if not exists uidx_users_email
			on users(email)`,
		`create table if not exists posts(
			post_id text not null primary key,
			title text not null,
			body text not null,
			tags text not null default '[]',
			image_url text not null default '',
			created_at integer not null,
			updated_at integer not null
		)`,
		`create unique index if not exists uidx_posts_body
			on posts(body)`,
		`create index if not exists idx_posts_created_at
			on posts(created_at)`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// asUniqueViolation converts sqlite unique constraint failures to
// UniqueViolation, any other error is returned unchanged.
func asUniqueViolation(err error) error {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) || sqlErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	// message format: UNIQUE constraint failed: <table>.<column>
	uv := UniqueViolation{}
	msg := sqlErr.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		parts := strings.SplitN(msg[idx+2:], ".", 2)
		if len(parts) == 2 {
			uv.Table, uv.Column = parts[0], parts[1]
		}
	}
	return uv
}
