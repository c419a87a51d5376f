package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-listing/internal/model"
)

// CommentRepo manages top-level comments on movies.
type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment and fills in its ID and CreatedAt.
func (r *CommentRepo) Create(ctx context.Context, cm *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO parent_comments (user_id, movie_id, content) VALUES (?, ?, ?)",
		cm.UserID, cm.MovieID, cm.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cm.ID = uint64(id)
	return r.db.QueryRowxContext(ctx,
		"SELECT created_at FROM parent_comments WHERE parent_comment_id = ?", cm.ID).Scan(&cm.CreatedAt)
}

// GetByID fetches a comment. It returns ErrCommentNotFound if no row matches.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var cm model.Comment
	err := r.db.GetContext(ctx, &cm,
		"SELECT parent_comment_id, user_id, movie_id, content, created_at FROM parent_comments WHERE parent_comment_id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &cm, nil
}

// ListByMovie returns the comments on movieID joined with the commenter's
// username and the movie title. Identical (title, username, content)
// triples are collapsed into one entry. The slice is empty, not nil, when
// nothing matched.
func (r *CommentRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.CommentView, error) {
	const q = `SELECT DISTINCT m.title AS title, u.username AS username, c.content AS content
		FROM parent_comments c
		JOIN users u ON u.user_id = c.user_id
		JOIN movies m ON m.movie_id = c.movie_id
		WHERE c.movie_id = ?
		ORDER BY title, username, content`
	out := []model.CommentView{}
	if err := r.db.SelectContext(ctx, &out, q, movieID); err != nil {
		return nil, err
	}
	return out, nil
}
