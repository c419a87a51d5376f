// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

import "time"

// ActivityQueue is the durable queue activity events are routed to.
const ActivityQueue = "movie.activity"

// Activity event types.
const (
	EventUserSignedUp  = "user.signed_up"
	EventPasswordReset = "user.password_reset"
	EventMovieListed   = "movie.listed"
	EventMovieUpdated  = "movie.updated"
	EventMovieDeleted  = "movie.deleted"
	EventMovieRated    = "movie.rated"
	EventCommentPosted = "comment.posted"
	EventReplyPosted   = "comment.replied"
)

// ActivityEvent is published after a successful user action. It carries
// enough context for a consumer to log or analyse the action without
// querying the primary database.
type ActivityEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	MovieTitle string `json:"movie_title,omitempty"`
	CommentID  uint64 `json:"comment_id,omitempty"`
	Rating     int    `json:"rating,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewActivityEvent stamps an event of the given type with the current UTC time.
func NewActivityEvent(typ string, userID uint64, username string) ActivityEvent {
	return ActivityEvent{
		Type:       typ,
		UserID:     userID,
		Username:   username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
