package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Stewz00/login-guard/internal/config"
	"github.com/Stewz00/login-guard/internal/database"
	"github.com/Stewz00/login-guard/internal/logging"
	"github.com/Stewz00/login-guard/internal/repository"
	"github.com/Stewz00/login-guard/internal/service"
	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account from the command line",
	Long: `Create an account directly in the credential store.

The password is taken from --password or, if omitted, from the
LOGIN_GUARD_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := registerPassword
		if password == "" {
			password = os.Getenv("LOGIN_GUARD_PASSWORD")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(os.Stderr, cfg.LogLevel)

		db, err := database.New(cmd.Context(), cfg.DbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(cmd.Context()); err != nil {
			return err
		}

		authService, err := service.NewAuthService(repository.NewCredentialRepository(db, cfg.QueryTimeout), cfg, log)
		if err != nil {
			return err
		}

		outcome, err := authService.Register(cmd.Context(), registerUsername, password)
		if err != nil {
			log.Error("registration failed", "username", registerUsername, "error", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message())

		if outcome != service.OutcomeRegistered {
			return errors.New(outcome.String())
		}
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password (defaults to $LOGIN_GUARD_PASSWORD)")
	_ = registerCmd.MarkFlagRequired("username")
}
