package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempJournal(ctx, t)
	defer cleanup()

	stored, err := s.InsertUser(ctx, User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatal(err)
	} else if stored.ID == "" {
		t.Fatal("inserted users should get an ID")
	}

	found, err := s.FindUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, stored, found)

	_, err = s.FindUserByEmail(ctx, "bob@example.com")
	if !errors.Is(err, NotFound{Kind: "user"}) {
		t.Fatalf("Error should be %v got %v", NotFound{Kind: "user"}, err)
	}

	_, err = s.InsertUser(ctx, User{Username: "alice2", Email: "alice@example.com", PasswordHash: "other"})
	if !errors.Is(err, UniqueViolation{Table: "users", Column: "email"}) {
		t.Fatalf("Duplicated emails should be rejected with a unique violation, got %#v", err)
	}
}

func TestConcurrentUserInsert(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempJournal(ctx, t)
	defer cleanup()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.InsertUser(ctx, User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
		}(i)
	}
	wg.Wait()

	var won, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, UniqueViolation{}):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || conflicts != attempts-1 {
		t.Fatalf("exactly one insert should win, got %v winners and %v conflicts", won, conflicts)
	}
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempJournal(ctx, t)
	defer cleanup()

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	var ids []string
	for _, text := range []string{"one", "two", "three", "four", "five", "six"} {
		p, err := s.InsertPost(ctx, Post{Title: "title " + text, Text: text})
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []string{}, p.Tags)
		ids = append(ids, p.ID)
	}

	recent, err := s.ListRecentPosts(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, p := range recent {
		texts = append(texts, p.Text)
	}
	require.Equal(t, []string{"six", "five", "four", "three", "two"}, texts)

	_, err = s.InsertPost(ctx, Post{Title: "again", Text: "one"})
	if !errors.Is(err, UniqueViolation{Table: "posts", Column: "body"}) {
		t.Fatalf("Duplicated text should be rejected, got %v", err)
	}

	title := "first post"
	tags := []string{"go", "blog"}
	updated, err := s.UpdatePost(ctx, ids[0], PostPatch{Title: &title, Tags: &tags})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "first post", updated.Title)
	require.Equal(t, "one", updated.Text, "fields missing from the patch must be preserved")
	require.Equal(t, tags, updated.Tags)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	loaded, err := s.GetPost(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, updated, loaded)

	dup := "two"
	_, err = s.UpdatePost(ctx, ids[0], PostPatch{Text: &dup})
	if !errors.Is(err, UniqueViolation{}) {
		t.Fatalf("Updating to an existing text should be rejected, got %v", err)
	}

	_, err = s.GetPost(ctx, "missing")
	if !errors.Is(err, NotFound{Kind: "post", ID: "missing"}) {
		t.Fatalf("Error should be NotFound got %v", err)
	}
	_, err = s.UpdatePost(ctx, "missing", PostPatch{Title: &title})
	if !errors.Is(err, NotFound{Kind: "post"}) {
		t.Fatalf("Error should be NotFound got %v", err)
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	dir, err := os.MkdirTemp("", "blogbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "nested", "blogbox.db")

	s, err := Open(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.InsertPost(ctx, Post{Title: "kept", Text: "across restarts"}); err != nil {
		t.Fatal(err)
	}
	if err = s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	posts, err := s.ListRecentPosts(ctx, 5)
	if err != nil {
		t.Fatal(err)
	} else if len(posts) != 1 || posts[0].Title != "kept" {
		t.Fatalf("Unexpected posts after reopening: %v", posts)
	}
}

func tempJournal(ctx context.Context, t interface {
	Fatal(...interface{})
	Log(...interface{})
}) (*Store, func()) {
	dir, err := os.MkdirTemp("", "blogbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(ctx, filepath.Join(dir, "blogbox.db"))
	if err != nil {
		t.Fatal(err)
	}
	return s, func() {
		err := s.Close()
		if err != nil {
			t.Log("unable to close journal", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
