package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	Post struct {
		ID        string    `json:"_id"`
		Title     string    `json:"title"`
		Text      string    `json:"text"`
		Tags      []string  `json:"tags"`
		ImageURL  string    `json:"imageUrl"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// PostPatch lists the fields to change on a post, nil fields are
	// left untouched
	PostPatch struct {
		Title    *string
		Text     *string
		Tags     *[]string
		ImageURL *string
	}

	rowScanner interface {
		Scan(...interface{}) error
	}
)

const (
	postColumns = `post_id, title, body, tags, image_url, created_at, updated_at`
)

// InsertPost stores p with a fresh ID and timestamps.
// Two posts cannot share the same text (UniqueViolation).
func (s *Store) InsertPost(ctx context.Context, p Post) (Post, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return Post{}, fmt.Errorf("unable to encode post tags, cause %w", err)
	}
	_, err = s.db.ExecContext(ctx, `insert into posts(`+postColumns+`) values (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Text, string(tags), p.ImageURL, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return Post{}, fmt.Errorf("unable to store post, cause %w", asUniqueViolation(err))
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	return getPost(s.db.QueryRowContext(ctx, `select `+postColumns+` from posts where post_id = ?`, id), id)
}

// UpdatePost applies patch to the post identified by id and returns
// the updated post.
func (s *Store) UpdatePost(ctx context.Context, id string, patch PostPatch) (Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, fmt.Errorf("unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()

	p, err := getPost(tx.QueryRowContext(ctx, `select `+postColumns+` from posts where post_id = ?`, id), id)
	if err != nil {
		return Post{}, err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Text != nil {
		p.Text = *patch.Text
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	p.UpdatedAt = s.now()
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return Post{}, fmt.Errorf("unable to encode post tags, cause %w", err)
	}
	_, err = tx.ExecContext(ctx, `update posts set title = ?, body = ?, tags = ?, image_url = ?, updated_at = ? where post_id = ?`,
		p.Title, p.Text, string(tags), p.ImageURL, p.UpdatedAt.UnixNano(), id)
	if err != nil {
		return Post{}, fmt.Errorf("unable to update post %v, cause %w", id, asUniqueViolation(err))
	}
	if err = tx.Commit(); err != nil {
		return Post{}, fmt.Errorf("unable to commit update of post %v, cause %w", id, err)
	}
	return p, nil
}

// ListRecentPosts returns at most limit posts, newest first
func (s *Store) ListRecentPosts(ctx context.Context, limit int) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `select `+postColumns+` from posts order by created_at desc, rowid desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	defer rows.Close()
	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan post, cause %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func getPost(row *sql.Row, id string) (Post, error) {
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, NotFound{Kind: "post", ID: id}
	} else if err != nil {
		return Post{}, fmt.Errorf("unable to load post %v, cause %w", id, err)
	}
	return p, nil
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var tags string
	var created, updated int64
	err := row.Scan(&p.ID, &p.Title, &p.Text, &tags, &p.ImageURL, &created, &updated)
	if err != nil {
		return Post{}, err
	}
	if err = json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Post{}, fmt.Errorf("post %v has invalid tags, cause %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}
