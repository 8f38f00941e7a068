package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corvidlang/pegrun/server/store"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		email TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL
	);`)
	return wrapDBError(err)
}

func (repo *UsersDB) Create(ctx context.Context, user store.User) (store.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx, `INSERT INTO users
		(id, username, password, role, email, created, modified, last_logout_time, last_login_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newUUID.String(), user.Username, user.Password, convertToDB_Role(user.Role), convertToDB_Email(user.Email),
		now.Unix(), now.Unix(), now.Unix(), int64(0),
	)
	if err != nil {
		return store.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]store.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, email, created, modified, last_logout_time, last_login_time FROM users;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return all, err
		}
		all = append(all, u)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (store.User, error) {
	var u store.User
	var id, role, email string
	var created, modified, lastLogout, lastLogin int64

	if err := row.Scan(&id, &u.Username, &u.Password, &role, &email, &created, &modified, &lastLogout, &lastLogin); err != nil {
		return u, wrapDBError(err)
	}
	if err := convertFromDB_UUID(id, &u.ID); err != nil {
		return u, err
	}
	if err := convertFromDB_Role(role, &u.Role); err != nil {
		return u, err
	}
	if err := convertFromDB_Email(email, &u.Email); err != nil {
		return u, err
	}
	u.Created = time.Unix(created, 0)
	u.Modified = time.Unix(modified, 0)
	u.LastLogoutTime = time.Unix(lastLogout, 0)
	u.LastLoginTime = time.Unix(lastLogin, 0)
	return u, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user store.User) (store.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET username=?, password=?, role=?, email=?, modified=?, last_logout_time=?, last_login_time=? WHERE id=?;`,
		user.Username, user.Password, convertToDB_Role(user.Role), convertToDB_Email(user.Email),
		time.Now().Unix(), user.LastLogoutTime.Unix(), user.LastLoginTime.Unix(), id.String(),
	)
	if err != nil {
		return store.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return store.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return store.User{}, store.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (store.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, role, email, created, modified, last_logout_time, last_login_time FROM users WHERE username = ?;`, username)
	return scanUser(row)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, username, password, role, email, created, modified, last_logout_time, last_login_time FROM users WHERE id = ?;`, id.String())
	return scanUser(row)
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (store.User, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, store.ErrNotFound
	}
	return curVal, nil
}

func (repo *UsersDB) Close() error {
	return nil // shares db with GrammarsDB; the parent *db owns the connection.
}
