package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-rest-service/internal/domain/user"
	apperrors "user-rest-service/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for unique index violations.
const pgUniqueViolation = "23505"

// UserRepoPG implements the usecase Repository interface on top of GORM.
// It works with any GORM dialect; the name reflects the production database.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Name     string `gorm:"not null"`                 // User's full name (required)
	Email    string `gorm:"not null;unique"`          // User's unique email address (required, unique)
	Password string `gorm:"not null"`                 // User's password, stored as provided
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Password: m.Password,
	}
}

// Save inserts the user when ID is zero and overwrites the row otherwise.
// A unique violation on email is returned as a DataIntegrityError. Overwriting a
// row that no longer exists returns a NotFoundError and never inserts it again.
func (r *UserRepoPG) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)

	var err error
	if model.ID == 0 {
		err = r.db.WithContext(ctx).Create(&model).Error
	} else {
		result := r.db.WithContext(ctx).
			Model(&UserSchema{ID: model.ID}).
			Select("Name", "Email", "Password").
			Updates(&model)
		err = result.Error
		if err == nil && result.RowsAffected == 0 {
			r.log.Warn("user to overwrite is gone", zap.Int64("id", model.ID))
			return nil, apperrors.NewNotFoundError("user", apperrors.MsgObjectNotFound)
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("unique constraint rejected user", zap.String("email", u.Email), zap.Error(err))
			return nil, apperrors.WrapDataIntegrityError("email", apperrors.MsgEmailRegistered, err)
		}
		r.log.Error("failed to save user in db", zap.Error(err), zap.Int64("id", u.ID))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	r.log.Info("user saved in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// DeleteByID removes a user from the database by ID. Deleting a missing row is not an error.
func (r *UserRepoPG) DeleteByID(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id), zap.Int64("rows", result.RowsAffected))
	return nil
}

// FindByID retrieves a user by ID. It returns nil, nil when no row matches.
func (r *UserRepoPG) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// FindByEmail retrieves a user by email address. It returns nil, nil when no row matches.
func (r *UserRepoPG) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// FindAll retrieves every user ordered by ID.
func (r *UserRepoPG) FindAll(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}

// ExistsByID reports whether a row with the given ID is stored.
func (r *UserRepoPG) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Count(&n).Error; err != nil {
		r.log.Error("failed to check user existence in db", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of stored users.
func (r *UserRepoPG) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// isUniqueViolation recognises duplicate-key failures from every dialect we run on.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
