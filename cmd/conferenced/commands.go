package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"conference/auth"
	"conference/config"
	core "conference/data/db"
	"conference/data/db/basic"
	"conference/server"
	"conference/storage"
)

var version = "dev"

type cli struct {
	loader     *config.Loader
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{loader: config.New(config.DefaultEnvPrefix)}
	root := &cobra.Command{
		Use:   "conferenced",
		Short: "Conference organization backend",
		Long: `Conference organization backend.

Settings come from an optional config file, then CONFERENCE_ prefixed
environment variables (e.g. CONFERENCE_SERVER_ADDR=:9090), then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loader.BindFlags(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("server.addr", ":8080", "HTTP listen address")
	flags.String("server.engine", "basic", "HTTP engine: basic | gin")
	flags.String("database.dsn", "", "database DSN")
	flags.String("auth.secret", "", "JWT signing secret")
	flags.String("log.level", "info", "log level: debug | info | warn | error")
	flags.String("messaging.driver", "memory", "task transport: sync | memory | redis | nats")
	flags.String("cache.driver", "memory", "cache: memory | redis")

	root.AddCommand(c.serveCmd(), c.migrateCmd(), c.tokenCmd(), c.announceCmd())
	return root
}

func (c *cli) load() (*config.Config, error) {
	return c.loader.Load(c.configPath)
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background task workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := server.NewApp(server.WithLoader(c.loader), server.WithConfigFile(c.configPath))
			return server.NewEngine(app, server.WithVersion(version)).Start()
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := basic.Open(ctx, core.DBConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := storage.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		user auth.User
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user.ID == "" || user.Email == "" {
				return fmt.Errorf("--user and --email are required")
			}
			cfg, err := c.load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer, ttl).IssueToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.ID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&user.Email, "email", "", "user email")
	cmd.Flags().StringVar(&user.Nickname, "nickname", "", "display name, defaults to the email local part")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to auth.token_ttl")
	return cmd
}

func (c *cli) announceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "announce",
		Short: "Refresh the nearly sold out announcement once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := server.NewApp(server.WithLoader(c.loader), server.WithConfigFile(c.configPath))
			if err := app.LoadConfig(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := app.SetupDependencies(ctx); err != nil {
				return err
			}
			defer app.Shutdown(context.Background())

			msg, err := app.Services().Announcements.Refresh(ctx)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "no conferences nearly sold out"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
