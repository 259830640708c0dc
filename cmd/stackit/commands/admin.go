package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/stackit/backend/internal/auth"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.db.Store().Migrate(cmd.Context()); err != nil {
			return err
		}
		a.log.Info("migrations applied")
		return nil
	},
}

// Registration always creates plain users; this is how the first admin is
// made.
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to a registered user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		svc := service.New(a.db.Store(), service.Options{
			Tokens: auth.NewTokenIssuer(auth.TokenConfig{SigningKey: a.cfg.SigningKey(), TTL: a.cfg.AccessTokenTTL}),
			Logger: a.log,
		})
		user, err := svc.Auth.Promote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now an admin\n", user.Username, user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(promoteCmd)
}
