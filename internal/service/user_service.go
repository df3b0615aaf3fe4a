package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/config"
	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/repository"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// UserService manages employee accounts and logins.
type UserService struct {
	tx         repository.Transactor
	users      repository.UserRepository
	entries    repository.DayEntryRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Transactor   repository.Transactor
	UserRepo     repository.UserRepository
	DayEntryRepo repository.DayEntryRepository
	Tokens       *auth.TokenManager
	Logger       *zap.Logger
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Position  string
	Roles     []string
}

// UpdateUserInput is a partial update; nil and blank credentials are left
// unchanged, an empty Roles keeps the current roles.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Position  *string
	Roles     []string
}

// LoginResult carries an issued access token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		tx:         deps.Transactor,
		users:      deps.UserRepo,
		entries:    deps.DayEntryRepo,
		tokens:     deps.Tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// CreateUser registers an account. Roles default to STAFF.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Caller, input CreateUserInput) (*domain.User, error) {
	if err := auth.RequireRole(caller, domain.RoleUserAdmin); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	missing := map[string]any{}
	if username == "" {
		missing["username"] = "required"
	}
	if email == "" {
		missing["email"] = "required"
	}
	if strings.TrimSpace(input.Password) == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", missing)
	}

	roles := []domain.Role{domain.RoleStaff}
	if len(input.Roles) > 0 {
		parsed, err := parseRoles(input.Roles)
		if err != nil {
			return nil, err
		}
		roles = parsed
	}

	if err := s.ensureUnique(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Position:     strings.TrimSpace(input.Position),
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username or email already in use", nil)
		}
		return nil, err
	}
	user.Roles = domain.SortRoles(user.Roles)

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("actor", caller.UserID))
	return user, nil
}

// UpdateUser applies a partial update to an account.
func (s *UserService) UpdateUser(ctx context.Context, caller domain.Caller, id string, input UpdateUserInput) (*domain.User, error) {
	if err := auth.RequireRole(caller, domain.RoleUserAdmin); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.loadUser(ctx, id)
		if err != nil {
			return err
		}

		if v := trimmed(input.Username); v != "" && v != user.Username {
			exists, err := s.users.ExistsByUsername(ctx, v)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.NewConflict("username already taken", map[string]any{"username": v})
			}
			user.Username = v
		}
		if v := trimmed(input.Email); v != "" && v != user.Email {
			exists, err := s.users.ExistsByEmail(ctx, v)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.NewConflict("email already in use", map[string]any{"email": v})
			}
			user.Email = v
		}
		if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
			hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Position != nil {
			user.Position = strings.TrimSpace(*input.Position)
		}
		if len(input.Roles) > 0 {
			roles, err := parseRoles(input.Roles)
			if err != nil {
				return err
			}
			user.Roles = roles
		}

		if err := s.users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("username or email already in use", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Roles = domain.SortRoles(user.Roles)
	return user, nil
}

// DeleteUser removes an account together with its schedule entries.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Caller, id string) error {
	if err := auth.RequireRole(caller, domain.RoleUserAdmin); err != nil {
		return err
	}
	if id == caller.UserID {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.loadUser(ctx, id); err != nil {
			return err
		}
		removed, err := s.entries.DeleteByUser(ctx, id)
		if err != nil {
			return err
		}
		if err := s.users.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewUserNotFound(id)
			}
			return err
		}
		s.logger.Info("user deleted",
			zap.String("user_id", id),
			zap.Int64("entries_removed", removed),
			zap.String("actor", caller.UserID))
		return nil
	})
}

// ListUsers returns every account ordered by username.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Caller) ([]domain.User, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	return s.loadUser(ctx, caller.UserID)
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// EnsureAdmin creates the seed administrator unless its username exists.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.SeedConfig) (bool, error) {
	exists, err := s.users.ExistsByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		Roles:        []domain.Role{domain.RoleUserAdmin},
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("seeded admin account", zap.String("username", admin.Username))
	return true, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string) error {
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict("username already taken", map[string]any{"username": username})
	}
	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict("email already in use", map[string]any{"email": email})
	}
	return nil
}

func (s *UserService) loadUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUserNotFound(id)
	}
	return user, err
}

func parseRoles(names []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role := domain.Role(strings.ToUpper(strings.TrimSpace(name)))
		if !role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": name})
		}
		roles = append(roles, role)
	}
	return domain.SortRoles(roles), nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
