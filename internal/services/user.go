package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/bitacora-blog/apiserver/types"
)

// ErrInvalidCredentials is returned when the email is unknown or the
// password does not match. The two cases are deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SoftDelete(ctx context.Context, id string) error
}

// PasswordCodec hashes and verifies passwords.
type PasswordCodec interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, password, digest string) bool
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Lastname string
	Email    string
	Password string
	Role     types.Role
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	hasher PasswordCodec
}

func NewUserService(repo UserRepository, hasher PasswordCodec) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Register hashes the password and stores a new user. Email uniqueness is
// not checked.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	if !input.Role.Valid() {
		return types.User{}, types.ErrUnknownRole
	}

	digest, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         strings.TrimSpace(input.Name),
		Lastname:     strings.TrimSpace(input.Lastname),
		Email:        strings.TrimSpace(input.Email),
		Role:         input.Role,
		PasswordHash: digest,
	})
	if err != nil {
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the active user matching email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Compare(ctx, password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}
