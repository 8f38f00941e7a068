// Package server assembles pegrun's HTTP parse service: grammar
// registration/retrieval, running a parse against a registered grammar, and
// the user/auth endpoints that guard management of both.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corvidlang/pegrun/server/api"
	"github.com/corvidlang/pegrun/server/middle"
	"github.com/corvidlang/pegrun/server/result"
	"github.com/corvidlang/pegrun/server/store"
	"github.com/corvidlang/pegrun/server/tunas"
)

// Server is a running pegrun parse service: an HTTP router backed by a
// persistence store.
type Server struct {
	router http.Handler
	db     store.Store
}

// New builds a Server from cfg. It connects to the configured DB but does not
// start listening; call ServeForever for that.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}

	backend := tunas.Service{DB: db}
	a := api.API{
		Backend:     backend,
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		result.MethodNotAllowed(req).WriteResponse(w)
	})

	authRequired := middle.RequireAuth(db.Users(), cfg.TokenSecret, cfg.UnauthDelay(), store.User{})
	authOptional := middle.OptionalAuth(db.Users(), cfg.TokenSecret, cfg.UnauthDelay(), store.User{})

	r.Route(api.PathPrefix, func(r chi.Router) {
		r.With(authOptional).Get("/info", a.HTTPGetInfo())

		r.Post("/login", a.HTTPCreateLogin())
		r.With(authRequired).Delete("/login/{id}", a.HTTPDeleteLogin())
		r.With(authRequired).Post("/tokens", a.HTTPCreateToken())

		r.With(authRequired).Get("/users", a.HTTPGetAllUsers())
		r.With(authRequired).Post("/users", a.HTTPCreateUser())
		r.With(authRequired).Get("/users/{id}", a.HTTPGetUser())
		r.With(authRequired).Put("/users/{id}", a.HTTPUpdateUser())
		r.With(authRequired).Delete("/users/{id}", a.HTTPDeleteUser())

		r.With(authRequired).Get("/grammars", a.HTTPGetAllGrammars())
		r.With(authRequired).Post("/grammars", a.HTTPCreateGrammar())
		r.With(authRequired).Get("/grammars/{id}", a.HTTPGetGrammar())
		r.With(authRequired).Delete("/grammars/{id}", a.HTTPDeleteGrammar())
		r.With(authRequired).Post("/grammars/{id}/parse", a.HTTPParse())
	})

	return &Server{router: r, db: db}, nil
}

// CreateUser creates a user directly against the backing store, bypassing
// the HTTP API. Used by cmd/pegserver to bootstrap the initial admin account.
func (s *Server) CreateUser(ctx context.Context, username, password, email string, role store.Role) (store.User, error) {
	svc := tunas.Service{DB: s.db}
	return svc.CreateUser(ctx, username, password, email, role)
}

// ServeForever starts the HTTP listener on addr:port and blocks until it
// exits, which it only does due to an unrecoverable listener error.
func (s *Server) ServeForever(addr string, port int) error {
	listenOn := fmt.Sprintf("%s:%d", addr, port)
	return http.ListenAndServe(listenOn, s.router)
}

// Close releases the server's persistence layer.
func (s *Server) Close() error {
	return s.db.Close()
}
