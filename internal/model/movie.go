package model

import (
	"database/sql"
	"time"
)

// Movie is a full row of the `movies` table, including the binary
// payloads.  Listing queries use MovieSummary instead so that video and
// cover bytes are only read when explicitly requested.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – unique movie title; the public lookup key.
//  Genre            – free-text genre.
//  Description      – free-text synopsis.
//  VideoData        – raw mp4 bytes (nil when absent).
//  CoverData        – raw cover image bytes (nil when absent).
//  CoverContentType – image/jpeg or image/png; empty when no cover.
//  ReleaseDate      – release date as YYYY-MM-DD.
//  UserID           – owning user; NULL once the owner is gone.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – refreshed on every update.
type Movie struct {
	ID               uint64        `db:"movie_id"`
	Title            string        `db:"title"`
	Genre            string        `db:"genre"`
	Description      string        `db:"description"`
	VideoData        []byte        `db:"video_data"`
	CoverData        []byte        `db:"coverimage_data"`
	CoverContentType string        `db:"cover_content_type"`
	ReleaseDate      string        `db:"release_date"`
	UserID           sql.NullInt64 `db:"user_id"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

// OwnedBy reports whether userID is the movie's recorded owner.
func (m *Movie) OwnedBy(userID uint64) bool {
	return m.UserID.Valid && uint64(m.UserID.Int64) == userID
}

// MovieSummary is the blob-free projection of a movie row.
type MovieSummary struct {
	ID          uint64        `db:"movie_id"`
	Title       string        `db:"title"`
	Genre       string        `db:"genre"`
	Description string        `db:"description"`
	ReleaseDate string        `db:"release_date"`
	UserID      sql.NullInt64 `db:"user_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// OwnedBy reports whether userID is the movie's recorded owner.
func (m *MovieSummary) OwnedBy(userID uint64) bool {
	return m.UserID.Valid && uint64(m.UserID.Int64) == userID
}

// MovieUpdate carries a partial update.  Nil fields are left unchanged.
type MovieUpdate struct {
	Title       *string
	Genre       *string
	Description *string
	UpdatedAt   *time.Time
}
