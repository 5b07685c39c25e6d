// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xyshuai/LLM-generated-reference-checker/internal/resolve"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/store"
	"github.com/xyshuai/LLM-generated-reference-checker/internal/verify"
	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "refcheck/0.1"
	defaultRateLimit = 5.0
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify citations against OpenAlex and Crossref",
	Long: `Verify reads citations (one per line) from a file, from arguments, or from
stdin, resolves each against OpenAlex and Crossref, and classifies it as
verified, ambiguous, or unverified.

A contact email is required: it identifies the caller to both providers
(OpenAlex polite pool, Crossref etiquette). Set it with --email, the
REFCHECK_EMAIL environment variable, or a .secrets/contact-email file.`,
	Args: cobra.ArbitraryArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("email", "", "contact email sent to metadata providers (required)")
	verifyCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	verifyCmd.Flags().Int("concurrency", 1, "citations processed in parallel")
	verifyCmd.Flags().Int("max-candidates", 10, "title-search candidates per provider")
	verifyCmd.Flags().Bool("json", false, "output outcomes as JSON")
	verifyCmd.Flags().Bool("csv", false, "output outcomes as CSV")
	verifyCmd.Flags().Bool("csl", false, "output a CSL-YAML bibliography")
	verifyCmd.Flags().Bool("save", false, "save the run to the history database")
	verifyCmd.Flags().String("db", "", "history database path (default refcheck.db)")
	verifyCmd.Flags().Bool("strict", false, "exit with status 1 when any citation is unverified")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	raws, err := readCitations(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		return fmt.Errorf("no citations to verify: provide a file, arguments, or stdin input")
	}

	email, _ := cmd.Flags().GetString("email")
	email = secretDefault("contact-email", firstNonEmpty(email, viper.GetString("email")))
	if email == "" {
		return fmt.Errorf("contact email is required: set --email, REFCHECK_EMAIL, or .secrets/contact-email")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	maxCandidates, _ := cmd.Flags().GetInt("max-candidates")

	cfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Email:         email,
		CrossrefToken: secretDefault("crossref-token", viper.GetString("crossref_token")),
		MaxCandidates: maxCandidates,
		RateLimit:     defaultRateLimit,
		Burst:         int(defaultRateLimit),
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resolver := resolve.New(
		resolve.NewOpenAlex(client, cfg),
		resolve.NewCrossref(client, cfg),
	)
	checker := verify.New(resolver, types.VerifyConfig{Concurrency: concurrency})

	// Ctrl-C stops the pool; completed outcomes are still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	outcomes := checker.VerifyBatch(ctx, raws, os.Stderr)

	asJSON, _ := cmd.Flags().GetBool("json")
	asCSV, _ := cmd.Flags().GetBool("csv")
	asCSL, _ := cmd.Flags().GetBool("csl")

	switch {
	case asJSON:
		if err := verify.FormatJSON(outcomes, os.Stdout); err != nil {
			return err
		}
	case asCSV:
		if err := verify.FormatCSV(outcomes, os.Stdout); err != nil {
			return err
		}
	case asCSL:
		if err := verify.FormatCSL(outcomes, os.Stdout); err != nil {
			return err
		}
	default:
		verify.FormatTable(outcomes, os.Stdout)
		fmt.Fprintln(os.Stdout)
		verify.FormatStats(verify.Summarize(outcomes), os.Stdout)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		dbPath, _ := cmd.Flags().GetString("db")
		s, err := store.Open(types.StoreConfig{Path: firstNonEmpty(dbPath, viper.GetString("db"))})
		if err != nil {
			return err
		}
		defer s.Close()
		runID, err := s.SaveRun(context.Background(), started, outcomes)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved run %d\n", runID)
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		stats := verify.Summarize(outcomes)
		if n := stats.ByStatus[types.StatusUnverified]; n > 0 {
			return fmt.Errorf("%d citation(s) unverified", n)
		}
	}
	return nil
}

// readCitations gathers raw citation lines. A single argument naming an
// existing file is read line by line; otherwise each argument is one
// citation; with no arguments, stdin is read.
func readCitations(args []string, stdin io.Reader) ([]string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			f, err := os.Open(args[0])
			if err != nil {
				return nil, fmt.Errorf("opening citations file: %w", err)
			}
			defer f.Close()
			return readLines(f)
		}
	}
	if len(args) > 0 {
		var raws []string
		for _, a := range args {
			if s := strings.TrimSpace(a); s != "" {
				raws = append(raws, s)
			}
		}
		return raws, nil
	}
	return readLines(stdin)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading citations: %w", err)
	}
	return lines, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
