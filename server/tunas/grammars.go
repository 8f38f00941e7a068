package tunas

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/corvidlang/pegrun/internal/peg"
	"github.com/corvidlang/pegrun/internal/pegfile"
	"github.com/corvidlang/pegrun/server/serr"
	"github.com/corvidlang/pegrun/server/store"
)

// GetAllGrammars returns every grammar owned by ownerID.
func (svc Service) GetAllGrammars(ctx context.Context, ownerID uuid.UUID) ([]store.Grammar, error) {
	grammars, err := svc.DB.Grammars().GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return grammars, nil
}

// GetGrammar returns the grammar with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occurred due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc Service) GetGrammar(ctx context.Context, id string) (store.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return store.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Grammar{}, serr.ErrNotFound
		}
		return store.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	return g, nil
}

// CreateGrammar registers a new grammar owned by ownerID. manifestTOML must
// parse as a pegfile.Manifest and its Start and Roles rule names must all
// resolve against its Names vector; artifact must decode as a
// []peg.Automaton. The decoded start index is computed once here and stored
// alongside the raw bytes so Parse does not need to re-resolve it.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If a grammar with that name
// already exists for the owner, it will match serr.ErrAlreadyExists. If the
// manifest or artifact is malformed, or the owner ID is invalid, it will
// match serr.ErrBadArgument. If the error occurred due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc Service) CreateGrammar(ctx context.Context, ownerID uuid.UUID, name, description string, manifestTOML, artifact []byte) (store.Grammar, error) {
	if name == "" {
		return store.Grammar{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	manifest, err := pegfile.Parse(manifestTOML)
	if err != nil {
		return store.Grammar{}, serr.New("manifest: "+err.Error(), err, serr.ErrBadArgument)
	}

	start, _, _, err := manifest.Resolve()
	if err != nil {
		return store.Grammar{}, serr.New("manifest: "+err.Error(), err, serr.ErrBadArgument)
	}

	automata, err := pegfile.DecodeArtifact(artifact)
	if err != nil {
		return store.Grammar{}, serr.New("artifact: "+err.Error(), err, serr.ErrBadArgument)
	}
	if start < 0 || start >= len(automata) {
		return store.Grammar{}, serr.New("manifest start rule has no matching automaton in artifact", serr.ErrBadArgument)
	}

	_, err = svc.DB.Grammars().GetByName(ctx, ownerID, name)
	if err == nil {
		return store.Grammar{}, serr.New("a grammar with that name already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Grammar{}, serr.WrapDB("", err)
	}

	newGrammar := store.Grammar{
		OwnerID:        ownerID,
		Name:           name,
		Description:    description,
		ManifestTOML:   manifestTOML,
		Automata:       artifact,
		StartAutomaton: start,
	}

	g, err := svc.DB.Grammars().Create(ctx, newGrammar)
	if err != nil {
		if errors.Is(err, store.ErrConstraintViolation) {
			return store.Grammar{}, serr.ErrAlreadyExists
		}
		return store.Grammar{}, serr.WrapDB("could not create grammar", err)
	}

	return g, nil
}

// DeleteGrammar deletes the grammar with the given ID. It returns the
// deleted grammar just after it was deleted.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occurred due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc Service) DeleteGrammar(ctx context.Context, id string) (store.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return store.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Grammar{}, serr.ErrNotFound
		}
		return store.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	return g, nil
}

// ParseOutcome is the result of running a registered grammar's engine
// against input text: either an AST plus the type names needed to render it,
// or a parse error plus the same names for caret-style rendering.
type ParseOutcome struct {
	Result peg.ParseResult
	Names  map[peg.TypeTag]string
}

// Parse loads the grammar with the given ID and runs its engine against
// input. checkEOF and maxDepth override the grammar's engine defaults; pass
// a non-positive maxDepth for no limit.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occurred due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc Service) Parse(ctx context.Context, id string, input string, checkEOF bool, maxDepth int) (ParseOutcome, error) {
	g, err := svc.GetGrammar(ctx, id)
	if err != nil {
		return ParseOutcome{}, err
	}

	manifest, err := pegfile.Parse(g.ManifestTOML)
	if err != nil {
		return ParseOutcome{}, serr.New("stored manifest: "+err.Error(), err)
	}

	start, roles, names, err := manifest.Resolve()
	if err != nil {
		return ParseOutcome{}, serr.New("stored manifest: "+err.Error(), err)
	}

	automata, err := pegfile.DecodeArtifact(g.Automata)
	if err != nil {
		return ParseOutcome{}, serr.New("stored artifact: "+err.Error(), err)
	}

	cfg := peg.Config{EOFCheck: checkEOF, MaxDepth: maxDepth}
	in := peg.NewStringInput(input)
	eng := peg.New(automata, roles, names, cfg, in, nil)

	return ParseOutcome{Result: eng.Parse(start), Names: names}, nil
}
