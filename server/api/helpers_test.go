package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/corvidlang/pegrun/server/api"
	"github.com/corvidlang/pegrun/server/middle"
	"github.com/corvidlang/pegrun/server/store"
	"github.com/corvidlang/pegrun/server/tunas"
)

func newTestAPI() api.API {
	return api.API{Backend: tunas.Service{DB: newFakeStore()}}
}

// authedRequest builds a request as if middle.AuthHandler had already run:
// the given user is attached to the context, and idParam (if non-empty) is
// set as the chi "id" URL parameter the way the router would for a path like
// /grammars/{id}.
func authedRequest(method, target string, body interface{}, user store.User, idParam string) *http.Request {
	var bodyReader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		bodyReader = bytes.NewBuffer(data)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, middle.AuthLoggedIn, true)
	ctx = context.WithValue(ctx, middle.AuthUser, user)

	if idParam != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", idParam)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

func mustParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
}
