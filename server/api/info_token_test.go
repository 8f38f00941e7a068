package api_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/server/api"
	"github.com/corvidlang/pegrun/server/store"
)

func TestHTTPGetInfo(t *testing.T) {
	a := newTestAPI()
	user := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "glimmer", Role: store.Normal}

	req := authedRequest("GET", "/api/v1/info", nil, user, "")
	rec := httptest.NewRecorder()

	a.HTTPGetInfo()(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp api.InfoModel
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Version.Server)
	assert.NotEmpty(t, resp.Version.Pegrun)
}

func TestHTTPCreateToken(t *testing.T) {
	a := newTestAPIWithSecret()
	user := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "glimmer", Role: store.Normal}

	req := authedRequest("POST", "/api/v1/tokens", nil, user, "")
	rec := httptest.NewRecorder()

	a.HTTPCreateToken()(rec, req)

	require.Equal(t, 201, rec.Code)

	var resp api.LoginResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID.String(), resp.UserID)
}
