package middle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/server/middle"
	"github.com/corvidlang/pegrun/server/store"
	"github.com/corvidlang/pegrun/server/token"
)

type fakeUserRepo struct {
	byID map[uuid.UUID]store.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u store.User) (store.User, error) { return u, nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (store.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]store.User, error) { return nil, nil }

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, u store.User) (store.User, error) {
	return u, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) (store.User, error) {
	return store.User{}, nil
}

func (f *fakeUserRepo) Close() error { return nil }

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestRequireAuth_NoToken(t *testing.T) {
	db := &fakeUserRepo{byID: map[uuid.UUID]store.User{}}
	mw := middle.RequireAuth(db, secret, 0, store.User{})

	var called bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest("GET", "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called, "next handler must not run without a token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	user := store.User{ID: uuid.New(), Username: "glimmer", Role: store.Normal}
	db := &fakeUserRepo{byID: map[uuid.UUID]store.User{user.ID: user}}
	mw := middle.RequireAuth(db, secret, 0, store.User{})

	tok, err := token.Generate(user, secret, time.Hour)
	require.NoError(t, err)

	var gotUser store.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Context().Value(middle.AuthUser).(store.User)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/anything", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, gotUser.ID)
}

func TestOptionalAuth_NoToken(t *testing.T) {
	db := &fakeUserRepo{byID: map[uuid.UUID]store.User{}}
	mw := middle.OptionalAuth(db, secret, 0, store.User{})

	var loggedIn bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggedIn = r.Context().Value(middle.AuthLoggedIn).(bool)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, loggedIn)
}

func TestDontPanic_RecoversAndWrites500(t *testing.T) {
	mw := middle.DontPanic()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/anything", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { handler.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
