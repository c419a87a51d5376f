package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/queue"
	"github.com/iliyamo/movie-listing/internal/repository"
)

// PostedComment echoes a stored comment back to its author.
type PostedComment struct {
	CommentID  uint64
	Username   string
	MovieTitle string
	Content    string
}

// PostedReply echoes a stored reply together with the comment it answers.
type PostedReply struct {
	ReplyID  uint64
	Username string
	Comment  string
	Reply    string
}

// CommentService handles comments on movies and single-level replies.
type CommentService struct {
	notifier
	movies   *repository.MovieRepo
	comments *repository.CommentRepo
	replies  *repository.ReplyRepo
}

func NewCommentService(movies *repository.MovieRepo, comments *repository.CommentRepo, replies *repository.ReplyRepo, l *log.Logger, events EventPublisher) *CommentService {
	return &CommentService{notifier: newNotifier(l, events), movies: movies, comments: comments, replies: replies}
}

func (s *CommentService) movie(ctx context.Context, title string) (*model.MovieSummary, error) {
	m, err := s.movies.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			s.warn("movie.not_found", log.JSON{"movie_title": title})
			return nil, notFound(movieNotFound)
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return m, nil
}

// Comment posts a top-level comment by actor on the movie titled title.
func (s *CommentService) Comment(ctx context.Context, actor *model.User, title, content string) (*PostedComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content is required")
	}
	m, err := s.movie(ctx, title)
	if err != nil {
		return nil, err
	}
	cm := &model.Comment{UserID: actor.ID, MovieID: m.ID, Content: content}
	if err := s.comments.Create(ctx, cm); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.info("comment.posted", log.JSON{"user_id": actor.ID, "movie_title": m.Title, "comment_id": cm.ID})
	ev := queue.NewActivityEvent(queue.EventCommentPosted, actor.ID, actor.Username)
	ev.MovieTitle, ev.CommentID = m.Title, cm.ID
	s.emit(ctx, ev)
	return &PostedComment{CommentID: cm.ID, Username: actor.Username, MovieTitle: m.Title, Content: cm.Content}, nil
}

// Comments lists the distinct comments on a movie. A movie without
// comments is reported as not found.
func (s *CommentService) Comments(ctx context.Context, title string) ([]model.CommentView, error) {
	m, err := s.movie(ctx, title)
	if err != nil {
		return nil, err
	}
	out, err := s.comments.ListByMovie(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if len(out) == 0 {
		s.warn("comment.none", log.JSON{"movie_title": title})
		return nil, notFound("No comments found for this movie")
	}
	return out, nil
}

// Reply answers the top-level comment parentID on behalf of actor.
func (s *CommentService) Reply(ctx context.Context, actor *model.User, parentID uint64, content string) (*PostedReply, error) {
	if parentID == 0 {
		return nil, invalid("parent_comment_id must be a positive integer")
	}
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content is required")
	}
	parent, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, notFound("Comment not found")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	rp := &model.Reply{UserID: actor.ID, ParentCommentID: parent.ID, Content: content}
	if err := s.replies.Create(ctx, rp); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, notFound("Comment not found")
		}
		return nil, fmt.Errorf("create reply: %w", err)
	}

	s.info("comment.replied", log.JSON{"user_id": actor.ID, "comment_id": parentID})
	ev := queue.NewActivityEvent(queue.EventReplyPosted, actor.ID, actor.Username)
	ev.CommentID = parentID
	s.emit(ctx, ev)
	return &PostedReply{ReplyID: rp.ID, Username: actor.Username, Comment: parent.Content, Reply: rp.Content}, nil
}

// Replies lists the replies to parentID. No replies is reported as not
// found.
func (s *CommentService) Replies(ctx context.Context, parentID uint64) ([]model.Reply, error) {
	out, err := s.replies.ListByParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	if len(out) == 0 {
		return nil, notFound("No replies found for the given comment")
	}
	return out, nil
}
