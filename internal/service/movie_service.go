package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/queue"
	"github.com/iliyamo/movie-listing/internal/repository"
)

const (
	// MaxPageSize caps the limit accepted by List.
	MaxPageSize = 100
	// DefaultPageSize is used by callers when no limit is given.
	DefaultPageSize = 10

	releaseDateLayout = "2006-01-02"
	movieNotFound     = "Movie not found"
)

// File is an uploaded payload with the content type the client declared.
type File struct {
	ContentType string
	Data        []byte
}

// UploadInput is a new movie listing.
type UploadInput struct {
	Title       string
	Genre       string
	Description string
	ReleaseDate string
	Video       File
	Cover       File
}

// MovieService implements listing, browsing and owner-only editing of movies.
type MovieService struct {
	notifier
	movies *repository.MovieRepo
	now    func() time.Time
}

func NewMovieService(movies *repository.MovieRepo, l *log.Logger, events EventPublisher) *MovieService {
	return &MovieService{notifier: newNotifier(l, events), movies: movies, now: time.Now}
}

// mediaType strips parameters and case from a declared content type.
func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// Upload creates a movie owned by actor. The video must be video/mp4 and
// the cover image/jpeg or image/png; both are checked before anything is
// written.
func (s *MovieService) Upload(ctx context.Context, actor *model.User, in UploadInput) (*model.Movie, error) {
	if mediaType(in.Video.ContentType) != "video/mp4" {
		return nil, invalid("Invalid file type. Only MP4 files are allowed.")
	}
	coverType := mediaType(in.Cover.ContentType)
	if coverType != "image/jpeg" && coverType != "image/png" {
		return nil, invalid("Invalid file type. Only jpeg or png files are allowed.")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if _, err := time.Parse(releaseDateLayout, in.ReleaseDate); err != nil {
		return nil, invalid("release_date must be YYYY-MM-DD")
	}

	m := &model.Movie{
		Title:            in.Title,
		Genre:            in.Genre,
		Description:      in.Description,
		VideoData:        in.Video.Data,
		CoverData:        in.Cover.Data,
		CoverContentType: coverType,
		ReleaseDate:      in.ReleaseDate,
	}
	m.UserID.Int64, m.UserID.Valid = int64(actor.ID), true
	if err := s.movies.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("A movie with this title already exists")
		}
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.info("movie.listed", log.JSON{"user_id": actor.ID, "username": actor.Username, "movie_title": m.Title})
	ev := queue.NewActivityEvent(queue.EventMovieListed, actor.ID, actor.Username)
	ev.MovieTitle = m.Title
	s.emit(ctx, ev)
	return m, nil
}

// List returns one page of movies. offset must be >= 0 and limit in
// [1, MaxPageSize].
func (s *MovieService) List(ctx context.Context, offset, limit int) ([]model.MovieSummary, error) {
	if offset < 0 {
		return nil, invalid("offset must not be negative")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, invalid(fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	}
	out, err := s.movies.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	s.info("movie.listed_all", log.JSON{"offset": offset, "limit": limit, "count": len(out)})
	return out, nil
}

// Get fetches a movie by title.
func (s *MovieService) Get(ctx context.Context, title string) (*model.MovieSummary, error) {
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

// Update applies a partial update to a movie owned by actor. updated_at is
// set to upd.UpdatedAt when given, otherwise to the current time.
func (s *MovieService) Update(ctx context.Context, actor *model.User, title string, upd model.MovieUpdate) (*model.MovieSummary, error) {
	current, err := s.Get(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := RequireMovieOwner(actor, current); err != nil {
		s.warn("movie.update_rejected", log.JSON{"user_id": actor.ID, "movie_title": title})
		return nil, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return nil, invalid("title must not be empty")
		}
		upd.Title = &t
	}

	at := s.now().UTC()
	if upd.UpdatedAt != nil {
		at = upd.UpdatedAt.UTC()
	}
	m, err := s.movies.UpdateOwned(ctx, title, actor.ID, upd, at)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflict("A movie with this title already exists")
		case errors.Is(err, repository.ErrMovieNotFound):
			return nil, notFound(movieNotFound)
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}

	s.info("movie.updated", log.JSON{"user_id": actor.ID, "movie_title": m.Title})
	ev := queue.NewActivityEvent(queue.EventMovieUpdated, actor.ID, actor.Username)
	ev.MovieTitle = m.Title
	s.emit(ctx, ev)
	return m, nil
}

// Delete removes a movie in one statement scoped by title and owner, so a
// movie owned by someone else is reported as not found.
func (s *MovieService) Delete(ctx context.Context, actor *model.User, title string) error {
	if err := s.movies.DeleteByTitleAndOwner(ctx, title, actor.ID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			s.warn("movie.delete_rejected", log.JSON{"user_id": actor.ID, "movie_title": title})
			return notFound(movieNotFound)
		}
		return fmt.Errorf("delete movie: %w", err)
	}
	s.info("movie.deleted", log.JSON{"user_id": actor.ID, "movie_title": title})
	ev := queue.NewActivityEvent(queue.EventMovieDeleted, actor.ID, actor.Username)
	ev.MovieTitle = title
	s.emit(ctx, ev)
	return nil
}

// Video returns the stored video bytes of a movie.
func (s *MovieService) Video(ctx context.Context, title string) ([]byte, error) {
	data, err := s.movies.GetVideo(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, notFound(movieNotFound)
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	if len(data) == 0 {
		return nil, notFound("Video not found")
	}
	return data, nil
}

// Cover returns the stored cover image and its content type.
func (s *MovieService) Cover(ctx context.Context, title string) ([]byte, string, error) {
	data, ct, err := s.movies.GetCover(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, "", notFound(movieNotFound)
		}
		return nil, "", fmt.Errorf("get cover: %w", err)
	}
	if len(data) == 0 {
		return nil, "", notFound("Cover image not found")
	}
	return data, ct, nil
}
