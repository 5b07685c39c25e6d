// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics across all saved runs",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("db", "", "history database path (default refcheck.db)")
	statsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	totals, err := s.Stats(context.Background())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	}

	fmt.Printf("runs:       %d\n", totals.Runs)
	fmt.Printf("citations:  %d\n", totals.Citations)
	fmt.Printf("verified:   %d\n", totals.Verified)
	fmt.Printf("ambiguous:  %d\n", totals.Ambiguous)
	fmt.Printf("unverified: %d\n", totals.Unverified)
	fmt.Printf("retracted:  %d\n", totals.Retracted)
	return nil
}
