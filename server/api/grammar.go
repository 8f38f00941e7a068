package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/corvidlang/pegrun/internal/pegfmt"
	"github.com/corvidlang/pegrun/server/middle"
	"github.com/corvidlang/pegrun/server/result"
	"github.com/corvidlang/pegrun/server/serr"
	"github.com/corvidlang/pegrun/server/store"
)

// HTTPGetAllGrammars returns a HandlerFunc that retrieves all grammars owned
// by the logged-in user.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the logged-in user of the client making the request.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllGrammars)
}

func (api API) epGetAllGrammars(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(store.User)

	grammars, err := api.Backend.GetAllGrammars(req.Context(), user.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]GrammarModel, len(grammars))
	for i := range grammars {
		resp[i] = grammarModel(grammars[i])
	}

	return result.OK(resp, "user '%s' got all grammars", user.Username)
}

// HTTPCreateGrammar returns a HandlerFunc that registers a new grammar owned
// by the logged-in user.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the logged-in user of the client making the request.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateGrammar)
}

func (api API) epCreateGrammar(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(store.User)

	var createReq GrammarCreateRequest
	if err := parseJSON(req, &createReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if createReq.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}
	if createReq.ManifestTOML == "" {
		return result.BadRequest("manifest_toml: property is empty or missing from request", "empty manifest")
	}

	artifact, err := base64.StdEncoding.DecodeString(createReq.ArtifactBytes)
	if err != nil {
		return result.BadRequest("artifact_bytes: not valid base64", "artifact_bytes: %s", err.Error())
	}

	g, err := api.Backend.CreateGrammar(req.Context(), user.ID, createReq.Name, createReq.Description, []byte(createReq.ManifestTOML), artifact)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("A grammar with that name already exists", "grammar '%s' already exists", createReq.Name)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(grammarModel(g), "user '%s' registered grammar '%s' (%s)", user.Username, g.Name, g.ID)
}

// HTTPGetGrammar returns a HandlerFunc that retrieves a single registered
// grammar. Only the owning user or an admin may retrieve it.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being operated on and the logged-in user of
// the client making the request.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(store.User)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get grammar: " + err.Error())
	}

	if g.OwnerID != user.ID && user.Role != store.Admin {
		return result.Forbidden("user '%s' (role %s) get grammar '%s': forbidden", user.Username, user.Role, g.Name)
	}

	return result.OK(grammarModel(g), "user '%s' got grammar '%s'", user.Username, g.Name)
}

// HTTPDeleteGrammar returns a HandlerFunc that deletes a registered grammar.
// Only the owning user or an admin may delete it.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being deleted and the logged-in user of the
// client making the request.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteGrammar)
}

func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(store.User)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get grammar: " + err.Error())
	}

	if g.OwnerID != user.ID && user.Role != store.Admin {
		return result.Forbidden("user '%s' (role %s) delete grammar '%s': forbidden", user.Username, user.Role, g.Name)
	}

	deleted, err := api.Backend.DeleteGrammar(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return result.InternalServerError("could not delete grammar: " + err.Error())
	}

	return result.NoContent("user '%s' successfully deleted grammar '%s'", user.Username, deleted.Name)
}

// HTTPParse returns a HandlerFunc that runs a registered grammar's engine
// against the text in the request body. Only the owning user or an admin may
// parse against it.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being used and the logged-in user of the
// client making the request.
func (api API) HTTPParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epParse)
}

func (api API) epParse(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(store.User)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get grammar: " + err.Error())
	}

	if g.OwnerID != user.ID && user.Role != store.Admin {
		return result.Forbidden("user '%s' (role %s) parse with grammar '%s': forbidden", user.Username, user.Role, g.Name)
	}

	var parseReq ParseRequest
	if err := parseJSON(req, &parseReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	outcome, err := api.Backend.Parse(req.Context(), id.String(), parseReq.Input, parseReq.CheckEOF, parseReq.MaxDepth)
	if err != nil {
		return result.InternalServerError("could not run parse: " + err.Error())
	}

	resp := ParseResponse{OK: outcome.Result.OK()}
	if resp.OK {
		if parseReq.WithTree {
			resp.Tree = pegfmt.Tree(outcome.Result.AST, pegfmt.TreeOptions{Names: outcome.Names})
		}
	} else {
		resp.Error = pegfmt.CaretError(parseReq.Input, outcome.Result.Err)
	}

	return result.OK(resp, "user '%s' parsed %d bytes with grammar '%s' (ok=%t)", user.Username, len(parseReq.Input), g.Name, resp.OK)
}

func grammarModel(g store.Grammar) GrammarModel {
	return GrammarModel{
		URI:          PathPrefix + "/grammars/" + g.ID.String(),
		ID:           g.ID.String(),
		Name:         g.Name,
		Description:  g.Description,
		ManifestTOML: string(g.ManifestTOML),
		Created:      g.Created.Format(time.RFC3339),
		Modified:     g.Modified.Format(time.RFC3339),
	}
}
