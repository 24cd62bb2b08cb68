// This is a small convenience tool for working with the secret vault in the
// configured database.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tkarsten/bluefin/internal/core"
	"github.com/tkarsten/bluefin/internal/core/data"
	"github.com/tkarsten/bluefin/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Encrypted secret storage tools",
}

var vaultInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the key record for a new vault",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, db := initDB()
		v, err := vault.Initialize(db, newLogger(cfg), requirePassword(), cfg.Vault.KeyLabel, cacheTTL(cfg))
		if err != nil {
			fmt.Println("error initializing vault:", err)
			os.Exit(1)
		}
		defer v.Close()
		fmt.Printf("initialized vault under key label %q\n", cfg.Vault.KeyLabel)
	},
}

var vaultPutCmd = &cobra.Command{
	Use:   "put [name] [value]",
	Short: "Encrypt and store a secret",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault()
		defer v.Close()
		if err := v.Put(args[0], args[1]); err != nil {
			fmt.Println("error storing secret:", err)
			os.Exit(1)
		}
	},
}

var vaultGetCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Decrypt and print a secret",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault()
		defer v.Close()
		value, err := v.Get(args[0])
		if err != nil {
			fmt.Println("error fetching secret:", err)
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored secret names",
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault()
		defer v.Close()
		names, err := v.List()
		if err != nil {
			fmt.Println("error listing secrets:", err)
			os.Exit(1)
		}
		fmt.Println(strings.Join(names, "\n"))
	},
}

var vaultDeleteCmd = &cobra.Command{
	Use:   "rm [name]",
	Short: "Delete a stored secret",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := openVault()
		defer v.Close()
		if err := v.Delete(args[0]); err != nil {
			fmt.Println("error deleting secret:", err)
			os.Exit(1)
		}
	},
}

func initDB() (*core.Config, *gorm.DB) {
	cfg := core.LoadConfig(ConfigFlag)

	dataSource := cfg.QualifiedPath(cfg.Database.File)
	if strings.ToLower(cfg.Database.Engine) == "postgres" {
		dataSource = cfg.DatabaseURL()
	}

	db, err := data.Open(cfg.Database.Engine, dataSource, cfg.Database.LoggingEnabled)
	if err != nil {
		fmt.Println("error connecting to database:", err)
		os.Exit(1)
	}
	return cfg, db
}

func newLogger(cfg *core.Config) *zap.SugaredLogger {
	logger, err := core.NewLogger(cfg)
	if err != nil {
		fmt.Println("error building logger:", err)
		os.Exit(1)
	}
	return logger
}

func openVault() *vault.Vault {
	cfg, db := initDB()
	v, err := vault.Open(db, newLogger(cfg), requirePassword(), cfg.Vault.KeyLabel, cacheTTL(cfg))
	if err != nil {
		fmt.Println("error opening vault:", err)
		os.Exit(1)
	}
	return v
}

func cacheTTL(cfg *core.Config) time.Duration {
	return time.Duration(cfg.Vault.CacheTTLSeconds) * time.Second
}
