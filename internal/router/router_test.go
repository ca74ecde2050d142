package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrebq/blogbox/auth"
	authapi "github.com/andrebq/blogbox/auth/api"
	"github.com/andrebq/blogbox/internal/config"
	"github.com/andrebq/blogbox/internal/testutil"
	"github.com/andrebq/blogbox/uploads"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
)

func acquireRouter(t *testing.T) (http.Handler, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	store, cleanupJournal := testutil.AcquireJournal(ctx, t, "router", nil)
	dir, cleanupDir := testutil.AcquireDir(t, "router-uploads")
	disk, err := uploads.NewDisk(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	svc, err := auth.NewService("adminuser", auth.JournalIdentities(store), auth.NewHasher(),
		auth.NewTokenCodec([]byte("router-test-signing-key"), time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	handler, err := AsHandler(ctx, Deps{
		Auth:    svc,
		Journal: store,
		Uploads: disk,
		Config:  config.Default(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return handler, func() {
		cancel()
		cleanupDir()
		cleanupJournal()
	}
}

func TestRouter(t *testing.T) {
	handler, cleanup := acquireRouter(t)
	defer cleanup()

	apitest.Handler(handler).Get("/api/posts").Expect(t).Status(http.StatusOK).Body(`[]`).End()
	apitest.Handler(handler).Get("/api/posts/missing").Expect(t).Status(http.StatusNotFound).End()
	apitest.Handler(handler).Get("/api/auth-status").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Post("/api/posts/create").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Post("/api/upload").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Get("/uploads/missing.png").Expect(t).Status(http.StatusNotFound).End()
	apitest.Handler(handler).Get("/index.html").
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.message", "Not Found")).
		End()
	apitest.Handler(handler).Method(http.MethodOptions).URL("/api/posts/create").
		Header("Origin", "http://ui:3000").
		Header("Access-Control-Request-Method", "POST").
		Expect(t).
		Status(http.StatusNoContent).
		Header("Access-Control-Allow-Credentials", "true").
		End()
}

func TestAuthorFlow(t *testing.T) {
	handler, cleanup := acquireRouter(t)
	defer cleanup()

	apitest.Handler(handler).Post("/api/register").
		JSON(`{"username":"adminuser","email":"admin@example.com","password":"s3cret-pass"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	res := apitest.Handler(handler).Post("/api/login").
		JSON(`{"email":"admin@example.com","password":"s3cret-pass"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
	var session *http.Cookie
	for _, c := range res.Response.Cookies() {
		if c.Name == authapi.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	var post struct {
		ID string `json:"_id"`
	}
	apitest.Handler(handler).Post("/api/posts/create").
		Cookie(authapi.SessionCookieName, session.Value).
		JSON(`{"title":"Hello","text":"First *post*"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(func(res *http.Response, _ *http.Request) error {
			return json.NewDecoder(res.Body).Decode(&post)
		}).
		End()
	require.NotEmpty(t, post.ID)

	apitest.Handler(handler).Put("/api/posts/"+post.ID).
		Cookie(authapi.SessionCookieName, session.Value).
		JSON(`{"tags":["news"]}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.tags[0]", "news")).
		End()

	apitest.Handler(handler).Get("/api/posts/"+post.ID+"/html").
		Expect(t).
		Status(http.StatusOK).
		End()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploads.FormField, "pic.png")
	require.NoError(t, err)
	fw.Write([]byte("png"))
	require.NoError(t, mw.Close())
	apitest.Handler(handler).Post("/api/upload").
		Cookie(authapi.SessionCookieName, session.Value).
		Header("Content-Type", mw.FormDataContentType()).
		Body(buf.String()).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Present("$.imageUrl")).
		End()

	apitest.Handler(handler).Post("/api/logout").
		Expect(t).
		Status(http.StatusOK).
		End()
}
