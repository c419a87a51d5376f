package model

import "time"

// Rating is a single 1..5 score a user gave a movie.  At most one
// rating exists per (user, movie) pair.
type Rating struct {
	ID        uint64    `db:"rating_id"`
	UserID    uint64    `db:"user_id"`
	MovieID   uint64    `db:"movie_id"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// RatingAggregate holds the exact inputs of a movie's average so the
// caller can round without floating point error.
type RatingAggregate struct {
	Title string `db:"title"`
	Sum   int64  `db:"total"`
	Count int64  `db:"votes"`
}
