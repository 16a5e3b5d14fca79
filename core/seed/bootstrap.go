package seed

import (
	"context"
	"database/sql"

	"mdip/config"
	"mdip/core/auth"
	"mdip/core/store"
	"mdip/core/utils"
)

// EnsureDefaultAdmin creates the bootstrap admin account on first start. An
// empty bootstrap password means no account is created, which is the right
// call for deployments that provision users out of band.
func EnsureDefaultAdmin(ctx context.Context, db *sql.DB, cfg *config.AppConfig, logger *utils.Logger) error {
	if cfg.Bootstrap.AdminPassword == "" {
		logger.Warnf("no bootstrap admin password set; skipping default admin")
		return nil
	}
	users := store.NewUsersStore(db)
	existing, err := users.FindByUsername(ctx, cfg.Bootstrap.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(cfg.Bootstrap.AdminPassword)
	if err != nil {
		return err
	}
	u := &store.User{
		Username:     cfg.Bootstrap.AdminUsername,
		PasswordHash: hash,
		Role:         store.RoleAdmin,
	}
	if _, err := users.Create(ctx, u); err != nil {
		return err
	}
	logger.Printf("created bootstrap admin %q", u.Username)
	return nil
}
