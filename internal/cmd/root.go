// Package cmd holds the taskboard command line.
package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/server"
)

// NewRoot builds the command tree. Running the binary without a
// subcommand serves the API.
func NewRoot(cfg *config.Config, log *logrus.Entry) *cobra.Command {
	serve := newServeCommand(cfg, log)
	root := &cobra.Command{
		Use:          "taskboard",
		Short:        "Multi-tenant Kanban backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(cfg, log))
	root.AddCommand(newTokenCommand(cfg))
	root.AddCommand(newUserCommand(cfg, log))
	return root
}

func newServeCommand(cfg *config.Config, log *logrus.Entry) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := server.Init(cfg, log)
			if err != nil {
				return fmt.Errorf("server initialization failed: %w", err)
			}
			s.Run()
			return nil
		},
	}
}

func newMigrateCommand(cfg *config.Config, log *logrus.Entry) *cobra.Command {
	migrateCmd := &cobra.Command{Use: "migrate", Short: "Manage the database schema"}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.MigrateUp(cfg, log)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return database.MigrateDown(cfg, log, steps)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(down)

	return migrateCmd
}

func newTokenCommand(cfg *config.Config) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("user")
			userID, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
			token, err := issuer.Generate(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().String("user", "", "user id (required)")
	_ = tokenCmd.MarkFlagRequired("user")
	return tokenCmd
}

func newUserCommand(cfg *config.Config, log *logrus.Entry) *cobra.Command {
	userCmd := &cobra.Command{Use: "user", Short: "Manage users"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			db, err := database.Open(cfg, log)
			if err != nil {
				return err
			}
			user := model.User{ID: uuid.New(), UserName: name, Email: email}
			if err := repository.NewStore(db).Users().Create(cmd.Context(), &user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}
	add.Flags().String("name", "", "display name (required)")
	add.Flags().String("email", "", "unique email (required)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("email")
	userCmd.AddCommand(add)

	return userCmd
}
