// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refcheck CLI.
// Implements: prd001-parsing, prd002-resolution, prd003-matching,
//             prd004-verification, prd005-history (CLI surface).
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the refcheck CLI.
var rootCmd = &cobra.Command{
	Use:   "refcheck",
	Short: "Verify reference lists against bibliographic databases",
	Long: `refcheck checks whether citations in a reference list correspond to real,
findable publications. Each citation is parsed into structured fields,
resolved against OpenAlex and Crossref, compared field by field, and
classified as verified, ambiguous, or unverified.

Built for reference lists produced by language models, where plausible-looking
but nonexistent citations are common.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refcheck.yaml or ~/.config/refcheck/config.yaml)")
}

func initConfig() {
	// .env values feed the same environment viper reads.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refcheck"))
		}
	}

	viper.SetEnvPrefix("REFCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
