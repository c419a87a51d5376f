package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-listing/internal/model"
)

// RatingRepo stores per-user movie ratings.
type RatingRepo struct {
	db *sqlx.DB
}

func NewRatingRepo(db *sqlx.DB) *RatingRepo { return &RatingRepo{db: db} }

// Exists reports whether userID has already rated movieID.
func (r *RatingRepo) Exists(ctx context.Context, userID, movieID uint64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM ratings WHERE user_id = ? AND movie_id = ?", userID, movieID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a rating. The (user_id, movie_id) unique key backs up the
// service-level check, so a concurrent second rating surfaces as ErrDuplicate.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (user_id, movie_id, rating) VALUES (?, ?, ?)",
		rt.UserID, rt.MovieID, rt.Rating)
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
	rt.ID = uint64(id)
	return r.db.QueryRowxContext(ctx, "SELECT created_at FROM ratings WHERE rating_id = ?", rt.ID).Scan(&rt.CreatedAt)
}

// Aggregate returns the movie title with the exact sum and count of its
// ratings. ErrMovieNotFound means the movie is absent; ErrNoRatings means
// it exists but nobody rated it yet.
func (r *RatingRepo) Aggregate(ctx context.Context, movieID uint64) (*model.RatingAggregate, error) {
	const q = `SELECT m.title AS title,
		COALESCE(SUM(r.rating), 0) AS total,
		COUNT(r.rating_id) AS votes
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.movie_id
		WHERE m.movie_id = ?
		GROUP BY m.movie_id, m.title`
	var agg model.RatingAggregate
	if err := r.db.GetContext(ctx, &agg, q, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	if agg.Count == 0 {
		return nil, ErrNoRatings
	}
	return &agg, nil
}
