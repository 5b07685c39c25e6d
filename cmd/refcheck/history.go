// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/store"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/verify"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved verification runs or show one run's outcomes",
	Long: `History lists runs saved with verify --save, most recent first. With a
run ID it prints that run's full outcomes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyCmd.Flags().String("db", "", "history database path (default refcheck.db)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	asJSON, _ := cmd.Flags().GetBool("json")

	if len(args) == 1 {
		var runID int64
		if _, err := fmt.Sscanf(args[0], "%d", &runID); err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		outcomes, err := s.Outcomes(context.Background(), runID)
		if err != nil {
			return err
		}
		if asJSON {
			return verify.FormatJSON(outcomes, os.Stdout)
		}
		verify.FormatTable(outcomes, os.Stdout)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.Runs(context.Background(), limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No saved runs.")
		return nil
	}
	fmt.Printf("%-6s  %-20s  %-9s  %-8s  %-9s  %-10s  %s\n",
		"ID", "Started", "Citations", "Verified", "Ambiguous", "Unverified", "Retracted")
	for _, r := range runs {
		fmt.Printf("%-6d  %-20s  %-9d  %-8d  %-9d  %-10d  %d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime),
			r.Citations, r.Verified, r.Ambiguous, r.Unverified, r.Retracted)
	}
	return nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	return store.Open(types.StoreConfig{Path: firstNonEmpty(dbPath, viper.GetString("db"))})
}
