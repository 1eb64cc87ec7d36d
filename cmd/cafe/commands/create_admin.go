package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/online_cafe/internal/db"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/service"
)

type adminInput struct {
	Phone     string
	Password  string
	FirstName string
	LastName  string
}

var admin adminInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account directly, without phone verification.

Examples:
  cafe create-admin --phone +15551234567 --password s3cret --first-name Ada --last-name Lovelace`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd.Context(), loadConfig().DatabaseURL, admin, cmd.OutOrStdout())
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&admin.Phone, "phone", "", "Phone number (required)")
	createAdminCmd.Flags().StringVar(&admin.Password, "password", "", "Password (required)")
	createAdminCmd.Flags().StringVar(&admin.FirstName, "first-name", "", "First name")
	createAdminCmd.Flags().StringVar(&admin.LastName, "last-name", "", "Last name")
	_ = createAdminCmd.MarkFlagRequired("phone")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(ctx context.Context, dsn string, in adminInput, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gdb, err := db.OpenAndMigrate(ctx, dsn, db.Options{})
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	svc := &service.AuthService{Repo: repo.New(gdb)}
	user, err := svc.CreateAdmin(ctx, in.Phone, in.Password, in.FirstName, in.LastName)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Admin user created successfully! (id %d)\n", user.ID)
	return nil
}
