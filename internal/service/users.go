package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/product_api/internal/hash"
	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/mykafka"
	"github.com/Skotchmaster/product_api/internal/repo"
	"github.com/Skotchmaster/product_api/internal/tokens"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type UserService struct {
	Repo   UserRepo
	Tokens *tokens.Issuer
	Events Publisher
}

type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	Role                 string
}

// UpdateUserInput fields left nil or empty are not changed.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Role     *string
}

type AuthResult struct {
	User  *models.User
	Token string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	if in.Email == "" || in.Password == "" || in.PasswordConfirmation == "" || in.Role == "" {
		return nil, newError(ErrValidation, MsgMissingFields)
	}
	if in.Password != in.PasswordConfirmation {
		return nil, newError(ErrValidation, MsgPasswordMismatch)
	}
	if !models.ValidRole(in.Role) {
		return nil, newError(ErrValidation, MsgInvalidRole)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, newError(ErrConflict, MsgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: in.Email, PasswordHash: pwHash, Role: in.Role}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newError(ErrConflict, MsgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(ErrNotFound, MsgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers re-checks the caller's stored role so a demoted admin's token is not enough.
func (s *UserService) ListUsers(ctx context.Context, callerID string) ([]models.User, error) {
	isAdmin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, newError(ErrForbidden, MsgRoleForbidden)
	}
	return s.Repo.ListUsers(ctx)
}

// UpdateUser applies in to user id on behalf of the caller. Users may edit themselves;
// admins may edit anyone. Only admins can change a role. The caller's role is read from
// the store, not the token, so a demotion takes effect before old tokens expire.
func (s *UserService) UpdateUser(ctx context.Context, callerID, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if callerID != id && !isAdmin {
		return nil, newError(ErrForbidden, MsgUserForbidden)
	}

	if v := deref(in.Email); v != "" && v != user.Email {
		if other, err := s.Repo.GetUserByEmail(ctx, v); err == nil && other.ID != user.ID {
			return nil, newError(ErrConflict, MsgUserExists)
		} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		user.Email = v
	}
	if v := deref(in.Role); v != "" && v != user.Role {
		if !models.ValidRole(v) {
			return nil, newError(ErrValidation, MsgInvalidRole)
		}
		if !isAdmin {
			return nil, newError(ErrForbidden, MsgRoleForbidden)
		}
		user.Role = v
	}
	if v := deref(in.Password); v != "" {
		pwHash, err := hash.HashPassword(v)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, newError(ErrNotFound, MsgUserNotFound)
		case errors.Is(err, repo.ErrDuplicate):
			return nil, newError(ErrConflict, MsgUserExists)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":      "user_updated",
		"userID":    user.ID,
		"updatedBy": callerID,
	})
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, MsgUserNotFound)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}

func (s *UserService) isAdmin(ctx context.Context, callerID string) (bool, error) {
	caller, err := s.Repo.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup caller: %w", err)
	}
	return caller.Role == models.RoleAdmin, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
