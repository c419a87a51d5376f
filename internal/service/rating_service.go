package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/queue"
	"github.com/iliyamo/movie-listing/internal/repository"
)

// MinRating and MaxRating bound a rating score.
const (
	MinRating = 1
	MaxRating = 5
)

// RatingSummary is a movie's average rating, formatted with one decimal.
type RatingSummary struct {
	Title  string
	Rating string
}

// RatingService records ratings and reports averages.
type RatingService struct {
	notifier
	movies  *repository.MovieRepo
	ratings *repository.RatingRepo
}

func NewRatingService(movies *repository.MovieRepo, ratings *repository.RatingRepo, l *log.Logger, events EventPublisher) *RatingService {
	return &RatingService{notifier: newNotifier(l, events), movies: movies, ratings: ratings}
}

// Rate stores actor's score for the movie titled title. Each user may rate
// a movie once.
func (s *RatingService) Rate(ctx context.Context, actor *model.User, title string, score int) error {
	if score < MinRating || score > MaxRating {
		return invalid(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	m, err := s.movies.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return notFound(movieNotFound)
		}
		return fmt.Errorf("get movie: %w", err)
	}

	rated, err := s.ratings.Exists(ctx, actor.ID, m.ID)
	if err != nil {
		return fmt.Errorf("check rating: %w", err)
	}
	if rated {
		s.warn("movie.rate_rejected", log.JSON{"user_id": actor.ID, "movie_title": title})
		return conflict("User has already rated this movie")
	}
	if err := s.ratings.Create(ctx, &model.Rating{UserID: actor.ID, MovieID: m.ID, Rating: score}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict("User has already rated this movie")
		}
		return fmt.Errorf("create rating: %w", err)
	}

	s.info("movie.rated", log.JSON{"user_id": actor.ID, "username": actor.Username, "movie_title": title, "rating": score})
	ev := queue.NewActivityEvent(queue.EventMovieRated, actor.ID, actor.Username)
	ev.MovieTitle, ev.Rating = title, score
	s.emit(ctx, ev)
	return nil
}

// Average returns the mean rating of the movie titled title.
func (s *RatingService) Average(ctx context.Context, title string) (*RatingSummary, error) {
	m, err := s.movies.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			s.warn("movie.not_found", log.JSON{"movie_title": title})
			return nil, notFound(movieNotFound)
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	agg, err := s.ratings.Aggregate(ctx, m.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoRatings):
			s.warn("movie.no_ratings", log.JSON{"movie_title": title})
			return nil, notFound("No ratings found for this movie")
		case errors.Is(err, repository.ErrMovieNotFound):
			return nil, notFound(movieNotFound)
		}
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	return &RatingSummary{Title: agg.Title, Rating: AverageRating(agg.Sum, agg.Count)}, nil
}

// AverageRating divides sum by count exactly and rounds half away from
// zero to one decimal place. count must be positive.
func AverageRating(sum, count int64) string {
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 1).StringFixed(1)
}
