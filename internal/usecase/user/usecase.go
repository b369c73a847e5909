package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-rest-service/internal/domain/user"
	apperrors "user-rest-service/pkg/errors"
	"user-rest-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)        // Retrieve user by ID
	FindByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email
	FindAll(ctx context.Context) ([]domain.User, error)                  // List every user in storage order
	Save(ctx context.Context, u *domain.User) (*domain.User, error)      // Insert when ID is zero, overwrite otherwise
	DeleteByID(ctx context.Context, id int64) error                      // Delete user by ID, no error when absent
	ExistsByID(ctx context.Context, id int64) (bool, error)              // Ask storage directly, never a cache
}

// Service implements the business rules for the user resource.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for presence checks
}

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError
// listing the missing fields by their JSON name.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, strings.ToLower(e.Field()))
	}
	return apperrors.NewValidationError(strings.Join(fields, ", "), apperrors.MsgRequiredField)
}

// FindByID returns the user with the given id or a NotFoundError.
func (s *Service) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		log.Warn("user not found", zap.Int64("id", id))
		return nil, apperrors.NewNotFoundError("user", apperrors.MsgObjectNotFound)
	}
	return u, nil
}

// FindAll returns every stored user.
func (s *Service) FindAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	return users, nil
}

// Create stores a new user. Any id carried by the DTO is discarded.
func (s *Service) Create(ctx context.Context, in UserDTO) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	in.ID = 0
	if err := s.checkEmail(ctx, in); err != nil {
		return nil, err
	}

	u, err := s.repo.Save(ctx, in.ToEntity())
	if err != nil {
		return nil, s.saveError(log, err)
	}

	log.Info("user created", zap.Int64("id", u.ID))
	return u, nil
}

// Update overwrites every field of the user identified by in.ID.
func (s *Service) Update(ctx context.Context, in UserDTO) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := s.ensureExists(ctx, in.ID); err != nil {
		return nil, err
	}

	if err := s.checkEmail(ctx, in); err != nil {
		return nil, err
	}

	u, err := s.repo.Save(ctx, in.ToEntity())
	if err != nil {
		return nil, s.saveError(log, err)
	}

	log.Info("user updated", zap.Int64("id", u.ID))
	return u, nil
}

// Delete removes the user after confirming it exists.
func (s *Service) Delete(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting user", zap.Int64("id", id))

	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return apperrors.NewInternalError("failed to delete user", err)
	}
	return nil
}

// ensureExists returns a NotFoundError unless storage holds the id.
// Writes must not trust a cached copy of a user that may already be gone.
func (s *Service) ensureExists(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, s.log)

	ok, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		log.Error("failed to check user existence", zap.Int64("id", id), zap.Error(err))
		return apperrors.NewInternalError("failed to get user", err)
	}
	if !ok {
		log.Warn("user not found", zap.Int64("id", id))
		return apperrors.NewNotFoundError("user", apperrors.MsgObjectNotFound)
	}
	return nil
}

// checkEmail rejects the DTO when a different user already owns its email.
// For creates in.ID is zero, so any owner is a conflict.
// The lookup and the following write are not atomic; the unique index on
// users.email is what finally enforces the rule.
func (s *Service) checkEmail(ctx context.Context, in UserDTO) error {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != in.ID {
		logger.WithContext(ctx, s.log).Warn("email already exists", zap.String("email", in.Email), zap.Int64("existing_id", existing.ID))
		return apperrors.NewDataIntegrityError("email", apperrors.MsgEmailRegistered)
	}
	return nil
}

func (s *Service) saveError(log *zap.Logger, err error) error {
	var integrityErr *apperrors.DataIntegrityError
	if errors.As(err, &integrityErr) {
		log.Warn("storage rejected duplicate email", zap.Error(err))
		return integrityErr
	}
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		log.Warn("user deleted before it could be saved", zap.Error(err))
		return notFound
	}
	log.Error("failed to save user", zap.Error(err))
	return apperrors.NewInternalError("failed to save user", fmt.Errorf("save: %w", err))
}
