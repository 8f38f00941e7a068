package tunas_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corvidlang/pegrun/server/store"
)

// fakeStore is a minimal in-memory store.Store for exercising server/tunas
// without a real database.
type fakeStore struct {
	users    *fakeUsers
	grammars *fakeGrammars
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    &fakeUsers{byID: make(map[uuid.UUID]store.User)},
		grammars: &fakeGrammars{byID: make(map[uuid.UUID]store.Grammar)},
	}
}

func (s *fakeStore) Users() store.UserRepository       { return s.users }
func (s *fakeStore) Grammars() store.GrammarRepository { return s.grammars }
func (s *fakeStore) Close() error                      { return nil }

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]store.User
}

func (f *fakeUsers) Create(ctx context.Context, user store.User) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Username == user.Username {
			return store.User{}, store.ErrConstraintViolation
		}
	}

	user.ID = uuid.New()
	user.Created = time.Now()
	user.Modified = user.Created
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeUsers) GetAll(ctx context.Context) ([]store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]store.User, 0, len(f.byID))
	for _, u := range f.byID {
		all = append(all, u)
	}
	return all, nil
}

func (f *fakeUsers) Update(ctx context.Context, id uuid.UUID, user store.User) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return store.User{}, store.ErrNotFound
	}
	if id != user.ID {
		if _, exists := f.byID[user.ID]; exists {
			return store.User{}, store.ErrConstraintViolation
		}
	}
	for otherID, u := range f.byID {
		if otherID != id && u.Username == user.Username {
			return store.User{}, store.ErrConstraintViolation
		}
	}

	user.Modified = time.Now()
	delete(f.byID, id)
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	delete(f.byID, id)
	return u, nil
}

func (f *fakeUsers) Close() error { return nil }

type fakeGrammars struct {
	mu   sync.Mutex
	byID map[uuid.UUID]store.Grammar
}

func (f *fakeGrammars) Create(ctx context.Context, g store.Grammar) (store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.OwnerID == g.OwnerID && existing.Name == g.Name {
			return store.Grammar{}, store.ErrConstraintViolation
		}
	}

	g.ID = uuid.New()
	g.Created = time.Now()
	g.Modified = g.Created
	f.byID[g.ID] = g
	return g, nil
}

func (f *fakeGrammars) GetByID(ctx context.Context, id uuid.UUID) (store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.byID[id]
	if !ok {
		return store.Grammar{}, store.ErrNotFound
	}
	return g, nil
}

func (f *fakeGrammars) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, g := range f.byID {
		if g.OwnerID == ownerID && g.Name == name {
			return g, nil
		}
	}
	return store.Grammar{}, store.ErrNotFound
}

func (f *fakeGrammars) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []store.Grammar
	for _, g := range f.byID {
		if g.OwnerID == ownerID {
			all = append(all, g)
		}
	}
	return all, nil
}

func (f *fakeGrammars) Update(ctx context.Context, id uuid.UUID, g store.Grammar) (store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return store.Grammar{}, store.ErrNotFound
	}
	g.Modified = time.Now()
	f.byID[id] = g
	return g, nil
}

func (f *fakeGrammars) Delete(ctx context.Context, id uuid.UUID) (store.Grammar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.byID[id]
	if !ok {
		return store.Grammar{}, store.ErrNotFound
	}
	delete(f.byID, id)
	return g, nil
}

func (f *fakeGrammars) Close() error { return nil }
