package api_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/server/api"
	"github.com/corvidlang/pegrun/server/store"
)

func TestHTTPCreateUser_RequiresAdmin(t *testing.T) {
	a := newTestAPI()
	nonAdmin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "glimmer", Role: store.Normal}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2"}
	req := authedRequest("POST", "/api/v1/users", createReq, nonAdmin, "")
	rec := httptest.NewRecorder()

	a.HTTPCreateUser()(rec, req)

	assert.Equal(t, 403, rec.Code)
}

func TestHTTPCreateUser(t *testing.T) {
	a := newTestAPI()
	admin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "admin", Role: store.Admin}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2", Role: "normal"}
	req := authedRequest("POST", "/api/v1/users", createReq, admin, "")
	rec := httptest.NewRecorder()

	a.HTTPCreateUser()(rec, req)

	require.Equal(t, 201, rec.Code)

	var resp api.UserModel
	decodeBody(t, rec, &resp)
	assert.Equal(t, "bramble", resp.Username)
	assert.Equal(t, "normal", resp.Role)
	assert.Empty(t, resp.Password, "password must never be echoed back")
}

func TestHTTPGetUser_Self(t *testing.T) {
	a := newTestAPI()
	admin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "admin", Role: store.Admin}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2"}
	createHTTPReq := authedRequest("POST", "/api/v1/users", createReq, admin, "")
	createRec := httptest.NewRecorder()
	a.HTTPCreateUser()(createRec, createHTTPReq)
	require.Equal(t, 201, createRec.Code)

	var created api.UserModel
	decodeBody(t, createRec, &created)
	createdUser := store.User{ID: mustParseUUID(created.ID), Username: created.Username, Role: store.Unverified}

	getReq := authedRequest("GET", "/api/v1/users/"+created.ID, nil, createdUser, created.ID)
	getRec := httptest.NewRecorder()
	a.HTTPGetUser()(getRec, getReq)

	assert.Equal(t, 200, getRec.Code)
}

func TestHTTPGetUser_ForbiddenForOtherNonAdmin(t *testing.T) {
	a := newTestAPI()
	admin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "admin", Role: store.Admin}
	other := store.User{ID: mustParseUUID("22222222-2222-2222-2222-222222222222"), Username: "other", Role: store.Normal}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2"}
	createHTTPReq := authedRequest("POST", "/api/v1/users", createReq, admin, "")
	createRec := httptest.NewRecorder()
	a.HTTPCreateUser()(createRec, createHTTPReq)
	require.Equal(t, 201, createRec.Code)

	var created api.UserModel
	decodeBody(t, createRec, &created)

	getReq := authedRequest("GET", "/api/v1/users/"+created.ID, nil, other, created.ID)
	getRec := httptest.NewRecorder()
	a.HTTPGetUser()(getRec, getReq)

	assert.Equal(t, 403, getRec.Code)
}

func TestHTTPDeleteUser_Self(t *testing.T) {
	a := newTestAPI()
	admin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "admin", Role: store.Admin}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2"}
	createHTTPReq := authedRequest("POST", "/api/v1/users", createReq, admin, "")
	createRec := httptest.NewRecorder()
	a.HTTPCreateUser()(createRec, createHTTPReq)
	require.Equal(t, 201, createRec.Code)

	var created api.UserModel
	decodeBody(t, createRec, &created)
	createdUser := store.User{ID: mustParseUUID(created.ID), Username: created.Username, Role: store.Unverified}

	delReq := authedRequest("DELETE", "/api/v1/users/"+created.ID, nil, createdUser, created.ID)
	delRec := httptest.NewRecorder()
	a.HTTPDeleteUser()(delRec, delReq)

	assert.Equal(t, 204, delRec.Code)
}

func TestHTTPUpdateUser_Self(t *testing.T) {
	a := newTestAPI()
	admin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "admin", Role: store.Admin}

	createReq := api.UserModel{Username: "bramble", Password: "hunter2"}
	createHTTPReq := authedRequest("POST", "/api/v1/users", createReq, admin, "")
	createRec := httptest.NewRecorder()
	a.HTTPCreateUser()(createRec, createHTTPReq)
	require.Equal(t, 201, createRec.Code)

	var created api.UserModel
	decodeBody(t, createRec, &created)
	createdUser := store.User{ID: mustParseUUID(created.ID), Username: created.Username, Role: store.Unverified}

	updateReq := api.UserUpdateRequest{Username: api.UpdateString{Update: true, Value: "briar"}}
	putReq := authedRequest("PUT", "/api/v1/users/"+created.ID, updateReq, createdUser, created.ID)
	putRec := httptest.NewRecorder()
	a.HTTPUpdateUser()(putRec, putReq)

	require.Equal(t, 201, putRec.Code)

	var updated api.UserModel
	decodeBody(t, putRec, &updated)
	assert.Equal(t, "briar", updated.Username)
	assert.Equal(t, created.ID, updated.ID, "a user cannot reassign their own ID")
}

func TestHTTPGetAllUsers_RequiresAdmin(t *testing.T) {
	a := newTestAPI()
	nonAdmin := store.User{ID: mustParseUUID("11111111-1111-1111-1111-111111111111"), Username: "glimmer", Role: store.Normal}

	req := authedRequest("GET", "/api/v1/users", nil, nonAdmin, "")
	rec := httptest.NewRecorder()

	a.HTTPGetAllUsers()(rec, req)

	assert.Equal(t, 403, rec.Code)
}
