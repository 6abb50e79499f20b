package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ybenali/roadcall/internal/config"
	"github.com/ybenali/roadcall/internal/db"
	"github.com/ybenali/roadcall/internal/store"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the roadcall datastore",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "roadcall.yaml", "path to roadcall config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create and seed the datastore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed empty collections with initial contacts, users and admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Drop all data, recreate the datastore and reseed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath)
		},
	})
	return cmd
}

// openSQL connects to the configured SQL backend, or reports that the
// file driver is in use.
func openSQL(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return db.ConnectSQLite(cfg.Store.DataFile)
	case "mysql":
		m := cfg.Store.MySQL
		return db.ConnectMySQL(m.User, m.Host, m.Port, m.Database)
	default:
		return nil, nil
	}
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gdb, err := openSQL(cfg)
	if err != nil {
		return err
	}
	if gdb == nil {
		if _, err := store.NewFileStore(cfg.Store.DataFile, store.FileStoreOpts{}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Datastore ready at %s\n", cfg.Store.DataFile)
		return nil
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}
	if err := db.Seed(gdb); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database migrated and seeded")
	return nil
}

func runDBSeed(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gdb, err := openSQL(cfg)
	if err != nil {
		return err
	}
	if gdb == nil {
		// The file store seeds itself on first open.
		if _, err := store.NewFileStore(cfg.Store.DataFile, store.FileStoreOpts{}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Datastore seeded at %s\n", cfg.Store.DataFile)
		return nil
	}
	if err := db.Seed(gdb); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database seeded")
	return nil
}

func runDBReset(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gdb, err := openSQL(cfg)
	if err != nil {
		return err
	}
	if gdb == nil {
		if err := os.Remove(cfg.Store.DataFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", cfg.Store.DataFile, err)
		}
		if _, err := store.NewFileStore(cfg.Store.DataFile, store.FileStoreOpts{}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Datastore reset at %s\n", cfg.Store.DataFile)
		return nil
	}
	if err := db.Reset(gdb); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
	return nil
}
