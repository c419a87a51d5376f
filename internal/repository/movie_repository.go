// Package repository contains data access logic separated from HTTP handlers.
// This file holds the movie repository. Movies are looked up by their unique
// title; ownership is recorded in user_id and enforced by owner-scoped
// statements for mutations.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides sentinel errors such as sql.ErrNoRows
	"errors"       // errors is used to compare sentinel values
	"strings"      // strings builds the dynamic SET clause
	"time"         // time types the updated_at value

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-listing/internal/model"
)

// summaryColumns never includes the blob columns.
const summaryColumns = "movie_id, title, genre, description, release_date, user_id, created_at, updated_at"

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sqlx.DB // db is the underlying connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sqlx.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a new movie. On success ID, CreatedAt and UpdatedAt are
// populated from the stored row. A title that already exists returns
// ErrDuplicate.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const qInsert = `INSERT INTO movies
		(title, genre, description, video_data, coverimage_data, cover_content_type, release_date, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		m.Title, m.Genre, m.Description, m.VideoData, m.CoverData, m.CoverContentType, m.ReleaseDate, m.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	// Perform a follow‑up SELECT to populate default timestamp fields.
	const qSelect = "SELECT created_at, updated_at FROM movies WHERE movie_id = ?"
	return r.db.QueryRowxContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// List returns one page of movies ordered by id.
func (r *MovieRepo) List(ctx context.Context, offset, limit int) ([]model.MovieSummary, error) {
	out := []model.MovieSummary{}
	q := "SELECT " + summaryColumns + " FROM movies ORDER BY movie_id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByTitle fetches the blob-free view of a movie. It returns
// ErrMovieNotFound if no row is found.
func (r *MovieRepo) GetByTitle(ctx context.Context, title string) (*model.MovieSummary, error) {
	var m model.MovieSummary
	q := "SELECT " + summaryColumns + " FROM movies WHERE title = ?"
	if err := r.db.GetContext(ctx, &m, q, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetVideo returns the stored video bytes, which may be empty.
func (r *MovieRepo) GetVideo(ctx context.Context, title string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowxContext(ctx, "SELECT video_data FROM movies WHERE title = ?", title).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return data, err
}

// GetCover returns the stored cover bytes and their content type.
func (r *MovieRepo) GetCover(ctx context.Context, title string) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	err := r.db.QueryRowxContext(ctx,
		"SELECT coverimage_data, cover_content_type FROM movies WHERE title = ?", title).Scan(&data, &ct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrMovieNotFound
	}
	return data, ct, err
}

// UpdateOwned applies the non-nil fields of upd to the movie titled title,
// provided it belongs to ownerID, and sets updated_at to updatedAt. It
// returns the movie as stored after the update. ErrMovieNotFound covers
// both a missing movie and one owned by someone else; renaming onto an
// existing title returns ErrDuplicate.
func (r *MovieRepo) UpdateOwned(ctx context.Context, title string, ownerID uint64, upd model.MovieUpdate, updatedAt time.Time) (*model.MovieSummary, error) {
	sets := []string{"updated_at = ?"}
	args := []any{updatedAt}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *upd.Genre)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	args = append(args, title, ownerID)

	q := "UPDATE movies SET " + strings.Join(sets, ", ") + " WHERE title = ? AND user_id = ?"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	// MySQL reports zero affected rows for no-op updates, so re-read instead.
	current := title
	if upd.Title != nil {
		current = *upd.Title
	}
	m, err := r.GetByTitle(ctx, current)
	if err != nil {
		return nil, err
	}
	if !m.OwnedBy(ownerID) {
		return nil, ErrMovieNotFound
	}
	return m, nil
}

// DeleteByTitleAndOwner removes the movie titled title if it belongs to
// ownerID. Ratings, comments and replies go with it through ON DELETE
// CASCADE. ErrMovieNotFound is returned when nothing matched.
func (r *MovieRepo) DeleteByTitleAndOwner(ctx context.Context, title string, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE title = ? AND user_id = ?", title, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
