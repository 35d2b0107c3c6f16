// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-engine CLI. Each pipeline
// stage is a subcommand; run executes all of them in order.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marchanero/scholar-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the scholar-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-engine",
	Short: "Citation-metrics pipeline for one Google Scholar author",
	Long: `scholar-engine crawls an author's Google Scholar profile through SerpAPI,
normalizes the article list, computes bibliometric analytics, and publishes a
consistent bundle of JSON artifacts for a static site.

Stages are subcommands: crawl, analyze, write, and verify. run executes all of
them in order. Every upstream request is recorded in a local SQLite ledger so
the monthly SerpAPI quota can be tracked with usage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-engine.yaml or ~/.config/scholar-engine/scholar-engine.yaml)")
	rootCmd.PersistentFlags().Bool("dev", false, "human-readable development logging")
	rootCmd.PersistentFlags().String("output-dir", "", "artifact directory (default public/data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-engine"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	_ = viper.BindPFlag("logging.development", rootCmd.PersistentFlags().Lookup("dev"))
	_ = viper.BindPFlag("artifacts.output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
