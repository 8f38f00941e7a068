// Package sqlite is a modernc.org/sqlite-backed implementation of
// server/store.Store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/corvidlang/pegrun/server/store"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type db struct {
	dbFilename string
	conn       *sql.DB

	users    *UsersDB
	grammars *GrammarsDB
}

// NewDatastore opens (creating if needed) the pegrun server's SQLite
// database under storageDir.
func NewDatastore(storageDir string) (store.Store, error) {
	d := &db{dbFilename: "pegrun.db"}

	fileName := filepath.Join(storageDir, d.dbFilename)
	var err error
	d.conn, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	d.users = &UsersDB{db: d.conn}
	if err := d.users.init(); err != nil {
		return nil, err
	}

	d.grammars = &GrammarsDB{db: d.conn}
	if err := d.grammars.init(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *db) Users() store.UserRepository       { return d.users }
func (d *db) Grammars() store.GrammarRepository { return d.grammars }

func (d *db) Close() error {
	return d.conn.Close()
}

func convertToDB_Role(r store.Role) string { return r.String() }

func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

func convertToDB_UUID(u uuid.UUID) string { return u.String() }

func convertToDB_Time(t time.Time) int64 { return t.Unix() }

func convertFromDB_Email(s string, target **mail.Address) error {
	if s == "" {
		*target = nil
		return nil
	}
	email, err := mail.ParseAddress(s)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrDecodingFailure, err)
	}
	*target = email
	return nil
}

func convertFromDB_Role(s string, target *store.Role) error {
	r, err := store.ParseRole(s)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrDecodingFailure, err)
	}
	*target = r
	return nil
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrDecodingFailure, err)
	}
	*target = u
	return nil
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return store.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
