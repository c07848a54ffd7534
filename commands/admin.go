package commands

import (
	"fmt"

	"tpv/database"
	"tpv/model"
	"tpv/service"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		database.InitDatabase(cfg.DatabaseDSN)
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password <password>",
	Short: "Set the cash-register close password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database.InitDatabase(cfg.DatabaseDSN)
		if err := service.NewCashService(database.DB, nil).SetPassword(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Close password updated")
		return nil
	},
}

var (
	userName string
	userRole string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user <login> <password>",
	Short: "Create a staff user",
	Long: `Create a staff user that can sign in to get an access token.

Examples:
  tpv create-user ana secreto --name "Ana" --role admin
  tpv create-user cocina1 1234 --role cocina`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database.InitDatabase(cfg.DatabaseDSN)
		user, err := service.NewUserService(database.DB).Create(cmd.Context(), service.CreateUserRequest{
			Name:     userName,
			Login:    args[0],
			Password: args[1],
			Role:     model.UserRole(userRole),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s created with id %d (%s)\n", user.Login, user.ID, user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, setPasswordCmd, createUserCmd)

	createUserCmd.Flags().StringVar(&userName, "name", "", "Display name")
	createUserCmd.Flags().StringVar(&userRole, "role", string(model.RoleWaiter), "Role: admin, camarero or cocina")
}
