package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"time"

	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/andrebq/blogbox/internal/validate"
	"github.com/andrebq/blogbox/journal"
	"github.com/julienschmidt/httprouter"
	"github.com/yuin/goldmark"
)

const (
	RecentPostsLimit = 5
	maxPostBody      = 1 << 20
)

type (
	// Gate decides which requests may reach the author-only handlers
	Gate interface {
		Protect(http.Handler) http.Handler
	}

	createPostRequest struct {
		Title    string   `json:"title"`
		Text     string   `json:"text"`
		Tags     []string `json:"tags"`
		ImageURL string   `json:"imageUrl"`
	}

	updatePostRequest struct {
		Title    *string   `json:"title"`
		Text     *string   `json:"text"`
		Tags     *[]string `json:"tags"`
		ImageURL *string   `json:"imageUrl"`
	}

	updatePostResponse struct {
		Message string       `json:"message"`
		Post    journal.Post `json:"post"`
	}

	handlers struct {
		store    *journal.Store
		cache    *postCache
		markdown goldmark.Markdown
	}
)

// AsHandler returns the handler for the post endpoints, creating and
// editing posts goes through gate.
func AsHandler(ctx context.Context, store *journal.Store, gate Gate, cacheTTL time.Duration) (http.Handler, error) {
	h, err := newHandlers(ctx, store, cacheTTL)
	if err != nil {
		return nil, err
	}
	return h.routes(gate), nil
}

func newHandlers(ctx context.Context, store *journal.Store, cacheTTL time.Duration) (*handlers, error) {
	cache, err := newPostCache(ctx, cacheTTL)
	if err != nil {
		return nil, err
	}
	return &handlers{
		store:    store,
		cache:    cache,
		markdown: goldmark.New(),
	}, nil
}

func (h *handlers) routes(gate Gate) http.Handler {
	router := httprouter.New()
	router.HandlerFunc("GET", "/api/posts", h.listRecent)
	router.HandlerFunc("GET", "/api/posts/:id", h.get)
	router.HandlerFunc("GET", "/api/posts/:id/html", h.render)
	router.Handler("POST", "/api/posts/create", gate.Protect(http.HandlerFunc(h.create)))
	router.Handler("PUT", "/api/posts/:id", gate.Protect(http.HandlerFunc(h.update)))
	return router
}

func (h *handlers) listRecent(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListRecentPosts(r.Context(), RecentPostsLimit)
	if err != nil {
		httpserver.InternalError(w, r, err, "Error fetching posts")
		return
	}
	httpserver.WriteJSON(w, r, http.StatusOK, posts)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	body, found := h.cache.get(id)
	if !found {
		// taken before the read, an update committed after this point
		// keeps the body we read out of the cache
		gen := h.cache.generation(id)
		post, err := h.store.GetPost(r.Context(), id)
		if errors.Is(err, journal.NotFound{Kind: "post"}) {
			httpserver.WriteJSON(w, r, http.StatusNotFound, httpserver.Failure{Error: "Post not found"})
			return
		} else if err != nil {
			httpserver.InternalError(w, r, err, "Error fetching post")
			return
		}
		body, err = json.Marshal(post)
		if err != nil {
			httpserver.InternalError(w, r, err, "Error fetching post")
			return
		}
		h.cache.putIfCurrent(id, gen, body)
	}
	tag := etag(body)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	post, err := h.store.GetPost(r.Context(), id)
	if errors.Is(err, journal.NotFound{Kind: "post"}) {
		httpserver.WriteJSON(w, r, http.StatusNotFound, httpserver.Failure{Error: "Post not found"})
		return
	} else if err != nil {
		httpserver.InternalError(w, r, err, "Error fetching post")
		return
	}
	var buf bytes.Buffer
	buf.WriteString("<article>\n<h1>")
	buf.WriteString(html.EscapeString(post.Title))
	buf.WriteString("</h1>\n")
	// raw html in the post text is omitted by the renderer
	if err := h.markdown.Convert([]byte(post.Text), &buf); err != nil {
		httpserver.InternalError(w, r, err, "Error rendering post")
		return
	}
	buf.WriteString("</article>\n")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := httpserver.ReadJSON(w, r, maxPostBody, &req); err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "Invalid request body"})
		return
	}
	if errs := validate.Post(req.Title, req.Text); len(errs) > 0 {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, validate.Errors{Errors: errs})
		return
	}
	post, err := h.store.InsertPost(r.Context(), journal.Post{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if errors.Is(err, journal.UniqueViolation{}) {
		httpserver.WriteJSON(w, r, http.StatusConflict, httpserver.Message{Message: "A post with the same text already exists"})
		return
	} else if err != nil {
		httpserver.InternalError(w, r, err, "Error creating post")
		return
	}
	log := logutil.GetOrDefault(r.Context())
	log.Info().Str("post.id", post.ID).Msg("Post created")
	httpserver.WriteJSON(w, r, http.StatusCreated, post)
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	var req updatePostRequest
	if err := httpserver.ReadJSON(w, r, maxPostBody, &req); err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "Invalid request body"})
		return
	}
	if errs := validate.PostPatch(req.Title, req.Text); len(errs) > 0 {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, validate.Errors{Errors: errs})
		return
	}
	post, err := h.store.UpdatePost(r.Context(), id, journal.PostPatch{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	switch {
	case errors.Is(err, journal.NotFound{Kind: "post"}):
		httpserver.WriteJSON(w, r, http.StatusNotFound, httpserver.Message{Message: "Post not found"})
		return
	case errors.Is(err, journal.UniqueViolation{}):
		httpserver.WriteJSON(w, r, http.StatusConflict, httpserver.Message{Message: "A post with the same text already exists"})
		return
	case err != nil:
		httpserver.InternalError(w, r, err, "Error updating post")
		return
	}
	log := logutil.GetOrDefault(r.Context())
	if err := h.cache.forget(id); err != nil {
		log.Warn().Err(err).Str("post.id", id).Msg("Unable to evict post from cache")
	}
	log.Info().Str("post.id", post.ID).Msg("Post updated")
	httpserver.WriteJSON(w, r, http.StatusOK, updatePostResponse{
		Message: "Post updated successfully",
		Post:    post,
	})
}
