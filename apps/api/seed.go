package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/user"
)

// seedAdmin saves the configured admin account, if any.
// The in-memory store starts empty on every run and has no admin CLI to create one.
func seedAdmin(ctx context.Context, usrSvc *user.Service, conf core.SeedConfig) error {
	if conf.AdminUsername == "" {
		return nil
	}
	if conf.AdminPassword == "" {
		return errors.Errorf("seed.adminPassword is required for admin %q", conf.AdminUsername)
	}
	_, err := usrSvc.AddUser(ctx, user.NewUser{
		Username: conf.AdminUsername,
		Role:     user.RoleAdmin,
		Password: conf.AdminPassword,
	})
	return err
}
