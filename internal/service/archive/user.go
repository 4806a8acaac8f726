package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"

	"docarchive/internal/access"
	"docarchive/internal/config"
	"docarchive/internal/domain"
	models "docarchive/internal/domain/models/archive"
	archiveRepo "docarchive/internal/domain/repositories/archive"
	archiveSvc "docarchive/internal/domain/services/archive"
)

type userService struct {
	userRepo      archiveRepo.UserRepository
	adminPassword string
	logger        *slog.Logger
}

// NewUserService creates a new user service. adminPassword is the password
// given to the default admin when the archive has no users yet.
func NewUserService(
	userRepo archiveRepo.UserRepository,
	adminPassword string,
	logger *slog.Logger,
) archiveSvc.UserService {
	return &userService{
		userRepo:      userRepo,
		adminPassword: adminPassword,
		logger:        logger,
	}
}

var errBadCredentials = &domain.UnauthorizedError{Message: "invalid username or password"}

// Authenticate checks password against the stored hash. Unknown users and
// wrong passwords are reported identically.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("authentication failed", "username", user.Username)
		return nil, errBadCredentials
	}

	return user, nil
}

// CreateUser adds an account with a hashed password
func (s *userService) CreateUser(ctx context.Context, actor access.Actor, req *archiveSvc.CreateUserRequest) (*models.User, error) {
	if err := access.Require(actor, access.CapManageUsers); err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := validateCreateUser(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		"id", user.ID,
		"username", user.Username,
		"role", user.Role,
		"by", actor.Username,
	)

	return user, nil
}

func validateCreateUser(req *archiveSvc.CreateUserRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required,
			validation.RuneLength(1, config.MaxUsernameLength),
		),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 72), // bcrypt input limit
		),
		validation.Field(&req.Role,
			validation.Required,
			validation.By(func(value interface{}) error {
				if role, _ := value.(models.Role); !role.Valid() {
					return fmt.Errorf("must be admin, editor or viewer")
				}
				return nil
			}),
		),
	)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ListUsers returns every account
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// DeleteUser removes an account. The seeded admin cannot be removed.
func (s *userService) DeleteUser(ctx context.Context, actor access.Actor, username string) error {
	if err := access.Require(actor, access.CapManageUsers); err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if username == models.DefaultAdminUsername {
		return &domain.ForbiddenError{Message: fmt.Sprintf("user %s cannot be deleted", username)}
	}

	if err := s.userRepo.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted", "username", username, "by", actor.Username)
	return nil
}

// EnsureDefaultAdmin creates the default admin when no account exists.
// Returns whether an account was created.
func (s *userService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	// Skip hashing on every start once accounts exist; CreateIfEmpty still
	// settles a race between two first starts.
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hashPassword(s.adminPassword)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Username:     models.DefaultAdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	created, err := s.userRepo.CreateIfEmpty(ctx, admin)
	if err != nil {
		return false, err
	}

	if created {
		s.logger.Info("default admin created", "username", admin.Username)
	}
	return created, nil
}
