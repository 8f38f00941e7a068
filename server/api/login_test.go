package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/server/api"
	"github.com/corvidlang/pegrun/server/store"
	"github.com/corvidlang/pegrun/server/tunas"
)

func newTestAPIWithSecret() api.API {
	return api.API{Backend: tunas.Service{DB: newFakeStore()}, Secret: []byte("0123456789abcdef0123456789abcdef")}
}

func TestHTTPCreateLogin(t *testing.T) {
	a := newTestAPIWithSecret()
	ctx := context.Background()

	_, err := a.Backend.CreateUser(ctx, "glimmer", "hunter2", "", store.Normal)
	require.NoError(t, err)

	loginReq := api.LoginRequest{Username: "glimmer", Password: "hunter2"}
	req := authedRequest("POST", "/api/v1/login", loginReq, store.User{}, "")
	rec := httptest.NewRecorder()

	a.HTTPCreateLogin()(rec, req)

	require.Equal(t, 201, rec.Code)

	var resp api.LoginResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.UserID)
}

func TestHTTPCreateLogin_WrongPassword(t *testing.T) {
	a := newTestAPIWithSecret()
	ctx := context.Background()

	_, err := a.Backend.CreateUser(ctx, "glimmer", "hunter2", "", store.Normal)
	require.NoError(t, err)

	loginReq := api.LoginRequest{Username: "glimmer", Password: "wrong"}
	req := authedRequest("POST", "/api/v1/login", loginReq, store.User{}, "")
	rec := httptest.NewRecorder()

	a.HTTPCreateLogin()(rec, req)

	assert.Equal(t, 401, rec.Code)
}
