package commands

import (
	"fmt"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MarkOverdueCmd is meant to be run daily by an external scheduler.
func MarkOverdueCmd() *cobra.Command {
	var (
		agencyID string
		asOf     string
	)
	cmd := &cobra.Command{
		Use:   "mark-overdue",
		Short: "Move pending payments past their due date to overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if asOf != "" {
				t, err := util.ParseDate("as-of", asOf)
				if err != nil {
					return err
				}
				day = t
			}

			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := cmd.Context()
			stores := store.New(rt.db)

			agencies := []string{agencyID}
			if agencyID == "" {
				if agencies, err = stores.Payments.AgencyIDs(ctx); err != nil {
					return err
				}
			}

			var total int64
			for _, id := range agencies {
				n, err := stores.Payments.MarkOverdue(ctx, id, day)
				if err != nil {
					return fmt.Errorf("agency %s: %w", id, err)
				}
				if n > 0 {
					rt.logger.Info("payments marked overdue", zap.String("agency_id", id), zap.Int64("count", n))
				}
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d payments marked overdue\n", total)
			return nil
		},
	}
	cmd.Flags().StringVar(&agencyID, "agency", "", "only this agency (default: all)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default: today)")
	return cmd
}
