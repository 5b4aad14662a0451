package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service implements signup, signin, and profile management.
type Service struct {
	users  Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService creates a user Service.
func NewService(users Repository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// SignUp registers a new account and returns it with a fresh access token.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*User, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", errors.Wrap(err, "lookup email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", errors.Wrap(err, "create user")
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return u, token, nil
}

// SignIn authenticates an existing account and returns it with a token.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "lookup email")
	}

	if !s.hasher.Check(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return u, token, nil
}

// Profile returns the account for the given id.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ProfileUpdate carries optional profile changes; empty fields keep their
// current values.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile applies the non-empty fields of upd to the account.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != "" {
		u.Name = upd.Name
	}
	if upd.Email != "" && upd.Email != u.Email {
		if _, err := s.users.GetByEmail(ctx, upd.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "lookup email")
		}
		u.Email = upd.Email
	}
	if upd.Password != "" {
		hash, err := s.hasher.Hash(upd.Password)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}
