package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/spf13/cobra"
)

// TokenCmd issues a bearer token for local development. Production tokens
// come from the identity service with the same signing secret.
func TokenCmd() *cobra.Command {
	var (
		agencyID string
		actorID  string
		role     string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token for an agency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is required")
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.JWT.ExpireHours) * time.Hour
			}
			tok, err := util.GenerateToken(cfg.JWT.Secret, cfg.JWT.Issuer, agencyID, actorID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&agencyID, "agency", "", "agency id (required)")
	cmd.Flags().StringVar(&actorID, "actor", "dev", "actor id recorded as confirmer and audit actor")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: jwt.expire_hours)")
	_ = cmd.MarkFlagRequired("agency")
	return cmd
}
