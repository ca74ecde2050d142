package router

import (
	"context"
	"net/http"

	"github.com/andrebq/blogbox/auth"
	authapi "github.com/andrebq/blogbox/auth/api"
	"github.com/andrebq/blogbox/internal/config"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/andrebq/blogbox/journal"
	postsapi "github.com/andrebq/blogbox/journal/api"
	"github.com/andrebq/blogbox/uploads"
)

type (
	// Deps are the collaborators shared by every route
	Deps struct {
		Auth    *auth.Service
		Journal *journal.Store
		Uploads *uploads.Disk
		Config  config.Config
	}
)

// AsHandler composes the session, post and upload endpoints behind the
// logging, panic recovery and CORS middlewares.
func AsHandler(ctx context.Context, deps Deps) (http.Handler, error) {
	realm := authapi.NewRealm(deps.Auth.Tokens())

	sessions, err := authapi.AsHandler(ctx, deps.Auth, realm, authapi.Throttle{
		PerMinute: deps.Config.Login.PerMinute,
		Burst:     deps.Config.Login.Burst,
	})
	if err != nil {
		return nil, err
	}
	posts, err := postsapi.AsHandler(ctx, deps.Journal, realm, deps.Config.PostCacheTTL.Duration)
	if err != nil {
		return nil, err
	}
	files := uploads.AsHandler(deps.Uploads, realm, deps.Config.MaxUploadBytes)

	mux := http.NewServeMux()
	mux.Handle("/api/posts", posts)
	mux.Handle("/api/posts/", posts)
	mux.Handle("/api/upload", files)
	mux.Handle("/uploads/", files)
	mux.Handle("/api/", sessions)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpserver.WriteJSON(w, r, http.StatusNotFound, httpserver.Message{Message: "Not Found"})
	})

	var handler http.Handler = mux
	handler = httpserver.CORS(deps.Config.AllowedOrigin, handler)
	handler = httpserver.Recover(handler)
	handler = logutil.Middleware(logutil.GetOrDefault(ctx), handler)
	return handler, nil
}
