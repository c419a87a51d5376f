package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/repository"
	"github.com/iliyamo/movie-listing/internal/utils"
)

const credentialsDetail = "Could not validate credentials"

// Guard turns bearer tokens into users and enforces ownership rules.
type Guard struct {
	users  *repository.UserRepo
	secret string
}

func NewGuard(users *repository.UserRepo, secret string) *Guard {
	return &Guard{users: users, secret: secret}
}

// Authenticate resolves raw to the acting user. A missing, malformed or
// expired token, or one naming a user that no longer exists, fails with
// ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, unauthenticated("Not authenticated")
	}
	username, err := utils.ParseAccessToken(g.secret, raw)
	if err != nil {
		return nil, unauthenticated(credentialsDetail)
	}
	u, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, unauthenticated(credentialsDetail)
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	return u, nil
}

// TokenSubject verifies raw and returns the username it was issued to,
// without loading the user.
func (g *Guard) TokenSubject(raw string) (string, error) {
	return utils.ParseAccessToken(g.secret, raw)
}

// RequireMovieOwner fails with ErrUnauthorized unless actor owns m.
func RequireMovieOwner(actor *model.User, m *model.MovieSummary) error {
	if actor == nil || !m.OwnedBy(actor.ID) {
		return unauthorized("Unauthorized user")
	}
	return nil
}

// RequireSameUser fails with ErrUnauthorized unless actor and target are
// the same account, compared by email.
func RequireSameUser(actor, target *model.User) error {
	if actor == nil || repository.NormalizeEmail(actor.Email) != repository.NormalizeEmail(target.Email) {
		return unauthorized("Unauthorized user")
	}
	return nil
}
