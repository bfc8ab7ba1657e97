package main

import (
	"context"
	"errors"

	"github.com/desertthunder/lbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatus validates the configured ListenBrainz token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	svc, err := r.resolveService(ctx)
	if err != nil {
		return err
	}

	username, err := svc.ValidateToken(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidToken) {
			r.writePlain("Token rejected by %s.\n", svc.Name())
		}
		return err
	}

	r.writePlain("Token valid. Submitting as %s.\n", username)
	return nil
}
