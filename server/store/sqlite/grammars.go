package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"time"

	"github.com/corvidlang/pegrun/server/store"
	"github.com/google/uuid"
)

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		manifest_toml TEXT NOT NULL,
		automata TEXT NOT NULL,
		start_automaton INTEGER NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		UNIQUE(owner_id, name)
	);`)
	return wrapDBError(err)
}

func (repo *GrammarsDB) Create(ctx context.Context, g store.Grammar) (store.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.Grammar{}, err
	}
	now := time.Now()
	_, err = repo.db.ExecContext(ctx, `INSERT INTO grammars
		(id, owner_id, name, description, manifest_toml, automata, start_automaton, created, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newUUID.String(), convertToDB_UUID(g.OwnerID), g.Name, g.Description,
		convertToDB_ByteSlice(g.ManifestTOML), convertToDB_ByteSlice(g.Automata), g.StartAutomaton,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return store.Grammar{}, wrapDBError(err)
	}
	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (store.Grammar, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, owner_id, name, description, manifest_toml, automata, start_automaton, created, modified FROM grammars WHERE id = ?;`, id.String())
	return scanGrammar(row)
}

func (repo *GrammarsDB) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (store.Grammar, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, owner_id, name, description, manifest_toml, automata, start_automaton, created, modified FROM grammars WHERE owner_id = ? AND name = ?;`, ownerID.String(), name)
	return scanGrammar(row)
}

func (repo *GrammarsDB) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, owner_id, name, description, manifest_toml, automata, start_automaton, created, modified FROM grammars WHERE owner_id = ?;`, ownerID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []store.Grammar
	for rows.Next() {
		g, err := scanGrammar(rows)
		if err != nil {
			return all, err
		}
		all = append(all, g)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *GrammarsDB) Update(ctx context.Context, id uuid.UUID, g store.Grammar) (store.Grammar, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE grammars SET name=?, description=?, manifest_toml=?, automata=?, start_automaton=?, modified=? WHERE id=?;`,
		g.Name, g.Description, convertToDB_ByteSlice(g.ManifestTOML), convertToDB_ByteSlice(g.Automata), g.StartAutomaton, time.Now().Unix(), id.String(),
	)
	if err != nil {
		return store.Grammar{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return store.Grammar{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return store.Grammar{}, store.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (store.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, id.String())
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

func (repo *GrammarsDB) Close() error {
	return nil // shares db with UsersDB; the parent *db owns the connection.
}

func scanGrammar(row scanner) (store.Grammar, error) {
	var g store.Grammar
	var id, owner, manifest, automata string
	var created, modified int64

	if err := row.Scan(&id, &owner, &g.Name, &g.Description, &manifest, &automata, &g.StartAutomaton, &created, &modified); err != nil {
		return g, wrapDBError(err)
	}
	if err := convertFromDB_UUID(id, &g.ID); err != nil {
		return g, err
	}
	if err := convertFromDB_UUID(owner, &g.OwnerID); err != nil {
		return g, err
	}
	if err := convertFromDB_ByteSlice(manifest, &g.ManifestTOML); err != nil {
		return g, err
	}
	if err := convertFromDB_ByteSlice(automata, &g.Automata); err != nil {
		return g, err
	}
	g.Created = time.Unix(created, 0)
	g.Modified = time.Unix(modified, 0)
	return g, nil
}

func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func convertFromDB_ByteSlice(s string, target *[]byte) error {
	if s == "" {
		*target = nil
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*target = decoded
	return nil
}
