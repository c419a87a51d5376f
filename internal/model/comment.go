package model

import "time"

// Comment is a top-level comment on a movie (`parent_comments` table).
type Comment struct {
	ID        uint64    `db:"parent_comment_id"`
	UserID    uint64    `db:"user_id"`
	MovieID   uint64    `db:"movie_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// CommentView is a comment joined with its author's username and the
// movie title.
type CommentView struct {
	MovieTitle string `db:"title"`
	Username   string `db:"username"`
	Content    string `db:"content"`
}

// Reply answers a top-level comment (`comment_replies` table).  Replies
// cannot themselves be replied to.
type Reply struct {
	ID              uint64    `db:"reply_id"`
	UserID          uint64    `db:"user_id"`
	ParentCommentID uint64    `db:"parent_comment_id"`
	Content         string    `db:"content"`
	CreatedAt       time.Time `db:"created_at"`
}
