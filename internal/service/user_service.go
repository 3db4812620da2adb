package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/validation"
)

// DeletedEmailDomain is the reserved domain of anonymized accounts.
const DeletedEmailDomain = "deleted.invalid"

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	now      func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput changes credentials. Nil fields are left alone;
// CurrentPassword is always required.
type UpdateUserInput struct {
	CurrentPassword string
	Username        *string
	Email           *string
	Password        *string
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher, now: time.Now}
}

// Register creates an account. Format rules run first, then the duplicate
// pre-check among active users; a unique violation at insert time is still
// reported as DUPLICATE_RESOURCE.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateCredentials(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, in.Username, in.Email, 0); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: digest,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.UserLifecycle.WithLabelValues("register").Inc()
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate resolves login as a username, then as an email, and checks
// the password. It never distinguishes an unknown login from a wrong
// password; storage failures are logged and reported as a failed login.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, bool) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, false
	}

	user, err := s.userRepo.GetByUsername(ctx, login)
	if err == nil && user == nil {
		user, err = s.userRepo.GetByEmail(ctx, login)
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "login lookup failed", slog.String("error", err.Error()))
		return nil, false
	}
	if user == nil || !s.hasher.Verify(user.Password, password) {
		observability.UserLifecycle.WithLabelValues("login_failed").Inc()
		return nil, false
	}

	observability.UserLifecycle.WithLabelValues("login").Inc()
	return user, true
}

// GetByID returns an active user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetActiveByID(ctx, id)
}

// GetRawByID also returns soft-deleted users.
func (s *UserService) GetRawByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	return s.userRepo.List(ctx, includeDeleted)
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(user.Password, in.CurrentPassword) {
		return nil, models.NewInvalidCredentialsError("Current password is incorrect")
	}

	changed := false
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name != user.Username {
			if err := validation.ValidateUsername(name); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			if err := s.ensureAvailable(ctx, name, "", user.ID); err != nil {
				return nil, err
			}
			user.Username = name
			changed = true
		}
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != user.Email {
			if err := validation.ValidateEmail(email); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			if err := s.ensureAvailable(ctx, "", email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
			changed = true
		}
	}
	if in.Password != nil && *in.Password != "" {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		digest, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = digest
		changed = true
	}
	if !changed {
		return nil, models.NewValidationError("At least one of username, email or password must change")
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft-deletes the account: the row stays, flagged and stamped, with
// username and email replaced by unique placeholders that free the originals.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	placeholder := fmt.Sprintf("%s%d_%d", validation.DeletedUsernamePrefix, user.ID, now.UnixNano())
	user.Username = placeholder
	user.Email = placeholder + "@" + DeletedEmailDomain
	user.Deleted = true
	user.DeletedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	observability.UserLifecycle.WithLabelValues("delete").Inc()
	middleware.Logger.InfoContext(ctx, "user soft-deleted", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// ensureAvailable checks the non-empty values against other active users.
func (s *UserService) ensureAvailable(ctx context.Context, username, email string, excludeID uint) error {
	if username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateError(fmt.Sprintf("Username '%s' is already taken", username))
		}
	}
	if email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateError(fmt.Sprintf("Email '%s' is already registered", email))
		}
	}
	return nil
}

func validateCredentials(username, email, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}
