package main

import (
	"context"
	"time"

	"github.com/desertthunder/plsync/internal/services"
	"github.com/desertthunder/plsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize in the browser and cache the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a cached token exists and when it expires",
				Action: r.AuthStatus,
			},
		},
	}
}

// AuthLogin runs the interactive OAuth flow even when a cached token exists.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	auth, err := r.googleAuth()
	if err != nil {
		return err
	}

	r.logger.Info("starting YouTube authorization")
	if _, err := auth.Login(ctx); err != nil {
		return err
	}

	r.logger.Infof("token saved to %v", auth.TokenPath())
	return r.writePlain("%s\n", ui.Styles.Success("✓ Authorization successful"))
}

// AuthStatus reports on the cached token without contacting Google.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status, err := services.InspectToken(r.config.Credentials.YouTube.TokenPath)
	if err != nil {
		return err
	}

	r.writePlainHeader("YouTube authorization")
	r.writePlain("Token file: %s\n", ui.Styles.As(status.Path, "#626262"))

	switch {
	case !status.Present:
		r.writePlain("%s\n", ui.Styles.Error("✗ Not authorized"))
		return r.writePlain("%s\n", ui.Styles.Help("Run `plsync auth login` to authorize."))
	case status.Valid:
		r.writePlain("%s\n", ui.Styles.Success("✓ Token valid"))
	case status.Refreshable:
		r.writePlain("%s\n", ui.Styles.Warn("⚠ Token expired, will refresh on next use"))
	default:
		r.writePlain("%s\n", ui.Styles.Error("✗ Token expired and cannot be refreshed"))
	}

	if !status.Expiry.IsZero() {
		r.writePlain("Expires: %s\n", status.Expiry.Local().Format(time.DateTime))
	}
	if status.Refreshable {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: missing\n")
	}
	return nil
}
