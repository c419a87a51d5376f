package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/config"
	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/queue"
	"github.com/iliyamo/movie-listing/internal/repository"
	"github.com/iliyamo/movie-listing/internal/utils"
)

const passwordTooLong = "password must be at most 72 bytes"

// SignupInput is the data needed to register an account.
type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// UserService implements signup, login and password reset.
type UserService struct {
	notifier
	users      *repository.UserRepo
	secret     string
	ttlMin     int
	bcryptCost int
	// dummyHash is checked when the username is unknown so a failed login
	// costs one bcrypt comparison either way.
	dummyHash string
}

// verifyPassword is swapped in tests to observe comparisons.
var verifyPassword = utils.VerifyPassword

func NewUserService(users *repository.UserRepo, cfg config.Config, l *log.Logger, events EventPublisher) *UserService {
	dummy, err := utils.HashPassword("movie-listing:no-such-user", cfg.BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return &UserService{
		notifier:   newNotifier(l, events),
		users:      users,
		secret:     cfg.JWTSecret,
		ttlMin:     cfg.AccessTTLMin,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummy,
	}
}

// Signup registers a new account. The email and username must both be
// unused.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = repository.NormalizeEmail(in.Email)
	switch {
	case in.FullName == "" || in.Username == "":
		return nil, invalid("full_name and username are required")
	case !strings.Contains(in.Email, "@"):
		return nil, invalid("A valid email is required")
	case in.Password == "":
		return nil, invalid("password is required")
	case len(in.Password) > utils.MaxPasswordBytes:
		return nil, invalid(passwordTooLong)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		s.warn("user.signup_rejected", log.JSON{"email": in.Email, "reason": "email exists"})
		return nil, conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		s.warn("user.signup_rejected", log.JSON{"username": in.Username, "reason": "username taken"})
		return nil, conflict("Username already taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{FullName: in.FullName, Username: in.Username, Email: in.Email, HashedPassword: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent signup.
			return nil, conflict("Email or username already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.info("user.signup", log.JSON{"user_id": u.ID, "username": u.Username})
	s.emit(ctx, queue.NewActivityEvent(queue.EventUserSignedUp, u.ID, u.Username))
	return u, nil
}

// Login checks the credentials and issues an access token whose subject
// is the username.
func (s *UserService) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return utils.AccessToken{}, fmt.Errorf("lookup user: %w", err)
	}
	hash := s.dummyHash
	if u != nil {
		hash = u.HashedPassword
	}
	if ok := verifyPassword(hash, password); !ok || u == nil {
		s.warn("user.login_failed", log.JSON{"username": username})
		return utils.AccessToken{}, unauthenticated("Incorrect username or password")
	}
	tok, err := utils.NewAccessToken(s.secret, u.Username, s.ttlMin)
	if err != nil {
		return utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	s.info("user.login", log.JSON{"user_id": u.ID, "username": u.Username})
	return tok, nil
}

// ResetPassword replaces the password of the account registered under
// email. Only that account may do so, and the new password must differ
// from the current one.
func (s *UserService) ResetPassword(ctx context.Context, actor *model.User, email, newPassword string) error {
	if newPassword == "" {
		return invalid("password is required")
	}
	if len(newPassword) > utils.MaxPasswordBytes {
		return invalid(passwordTooLong)
	}
	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.warn("user.reset_rejected", log.JSON{"email": email, "reason": "not found"})
			return notFound("User not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := RequireSameUser(actor, target); err != nil {
		s.warn("user.reset_rejected", log.JSON{"email": email, "reason": "not owner"})
		return err
	}
	if verifyPassword(target.HashedPassword, newPassword) {
		return conflict("New password must be different from the old password")
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, target.Email, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("User not found")
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.info("user.password_reset", log.JSON{"user_id": target.ID, "username": target.Username})
	s.emit(ctx, queue.NewActivityEvent(queue.EventPasswordReset, target.ID, target.Username))
	return nil
}
