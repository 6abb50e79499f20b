package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ybenali/roadcall/internal/backup"
	"github.com/ybenali/roadcall/internal/config"
	"github.com/ybenali/roadcall/internal/db"
	"github.com/ybenali/roadcall/internal/notify"
	"github.com/ybenali/roadcall/internal/server"
	"github.com/ybenali/roadcall/internal/store"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the roadcall API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "roadcall.yaml", "path to roadcall config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	// Tokens and other secrets may live in .env; missing file is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	notifier, err := notify.New(cfg.Notify.Platform, notifyToken(cfg.Notify.Platform), cfg.Notify.Channel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Schedule != "" {
		fs, ok := st.(*store.FileStore)
		if !ok {
			return fmt.Errorf("backup schedule requires the file store driver")
		}
		go func() {
			if err := backup.Run(ctx, backup.Opts{
				Source:   fs.Path(),
				Dir:      cfg.Backup.Dir,
				Schedule: cfg.Backup.Schedule,
				Keep:     cfg.Backup.Keep,
			}); err != nil {
				log.Printf("backup scheduler stopped: %v", err)
			}
		}()
	}

	return server.Start(ctx, server.StartOpts{
		Store:      st,
		Port:       cfg.Port,
		UploadsDir: cfg.UploadsDir,
		Notifier:   notifier,
		Out:        cmd.OutOrStdout(),
	})
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openStore builds the configured store backend, migrating and seeding
// SQL backends on the way up.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "file":
		return store.NewFileStore(cfg.Store.DataFile, store.FileStoreOpts{StrictReads: cfg.Store.StrictReads})
	case "sqlite":
		gdb, err := db.ConnectSQLite(cfg.Store.DataFile)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return nil, err
		}
		if err := db.Seed(gdb); err != nil {
			return nil, err
		}
		return store.NewGormStore(gdb), nil
	case "mysql":
		m := cfg.Store.MySQL
		gdb, err := db.ConnectMySQL(m.User, m.Host, m.Port, m.Database)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return nil, err
		}
		if err := db.Seed(gdb); err != nil {
			return nil, err
		}
		return store.NewGormStore(gdb), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// notifyToken resolves the bot token for the configured platform.
func notifyToken(platform string) string {
	switch platform {
	case "slack":
		return os.Getenv("ROADCALL_SLACK_BOT_TOKEN")
	case "discord":
		return os.Getenv("ROADCALL_DISCORD_BOT_TOKEN")
	}
	return ""
}
