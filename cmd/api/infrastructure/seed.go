package infrastructure

import (
	"context"
	"fmt"

	"user-rest-service/internal/domain/user"

	"go.uber.org/zap"
)

// SeedStore is the part of the user store the seeder needs.
type SeedStore interface {
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, u *user.User) (*user.User, error)
}

var seedUsers = []user.User{
	{Name: "Adison", Email: "adison@gmail.com", Password: "123"},
	{Name: "Lorival", Email: "lorival@gmail.com", Password: "123"},
}

// Seed inserts the sample users into an empty store. A store that already has users is left alone.
func Seed(ctx context.Context, store SeedStore, l *zap.Logger) error {
	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if total > 0 {
		l.Info("seed skipped, users already present", zap.Int64("count", total))
		return nil
	}

	for _, u := range seedUsers {
		saved, err := store.Save(ctx, &u)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		l.Info("seeded user", zap.Int64("id", saved.ID), zap.String("email", saved.Email))
	}

	return nil
}
