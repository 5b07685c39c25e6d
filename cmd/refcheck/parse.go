// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/parse"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract structured fields from citations without network access",
	Long: `Parse extracts title, authors, year, venue, volume, issue, pages, and DOI
from citations (one per line) and prints them. No provider queries are made;
this shows exactly what verify would extract before resolution.`,
	Args: cobra.ArbitraryArgs,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("json", false, "output extracted fields as JSON")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	raws, err := readCitations(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		return fmt.Errorf("no citations to parse: provide a file, arguments, or stdin input")
	}

	refs := make([]types.Reference, len(raws))
	for i, raw := range raws {
		refs[i] = parse.Parse(raw)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	for i, ref := range refs {
		fmt.Printf("[%d] %s\n", i+1, ref.Raw)
		printField("title", ref.Title)
		printField("first author", ref.FirstAuthor)
		if len(ref.Authors) > 1 {
			printField("authors", strings.Join(ref.Authors, "; "))
		}
		if ref.Year != 0 {
			printField("year", strconv.Itoa(ref.Year))
		}
		printField("venue", ref.Venue)
		printField("volume", ref.Volume)
		printField("issue", ref.Issue)
		printField("pages", ref.Pages)
		printField("doi", ref.DOI)
		fmt.Println()
	}
	return nil
}

func printField(name, value string) {
	if value != "" {
		fmt.Printf("    %-12s  %s\n", name, value)
	}
}
