package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"legal-lens/internal/client"
	"legal-lens/internal/helper"
	"legal-lens/internal/models"
)

var (
	analyzeServer string
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Summarize documents and flag risky clauses",
	Long: `Runs extraction, caching and analysis for each file. With --server the
files are uploaded to a running API and unchanged files are not sent twice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeServer, "server", "", "base URL of a running server, e.g. http://localhost:8080")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var process func(path string, data []byte) (*models.ProcessResult, error)
	if analyzeServer != "" {
		c := client.New(analyzeServer, nil)
		process = func(path string, data []byte) (*models.ProcessResult, error) {
			res, _, err := c.Upload(ctx, filepath.Base(path), data)
			return res, err
		}
	} else {
		p, closeFn, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		process = func(path string, data []byte) (*models.ProcessResult, error) {
			return p.Process(ctx, &models.RawDocument{
				Data:      data,
				MediaType: mime.TypeByExtension(filepath.Ext(path)),
				Filename:  filepath.Base(path),
				Size:      int64(len(data)),
			})
		}
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := process(path, data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if analyzeJSON {
			helper.PrettyPrint(cmd.OutOrStdout(), res)
			continue
		}
		printAnalysis(cmd.OutOrStdout(), path, res)
	}
	return nil
}

func printAnalysis(w io.Writer, path string, res *models.ProcessResult) {
	fmt.Fprintf(w, "== %s\n", path)
	fmt.Fprintf(w, "hash: %s (cached: %t)\n", res.DocHash, res.Cached)
	if res.Truncated {
		fmt.Fprintln(w, "Note: the document was long; only the first part was analyzed.")
	}
	if res.Analysis == nil {
		return
	}
	fmt.Fprintf(w, "\nRisk level: %s\n\nSummary:\n", res.Analysis.RiskLevel)
	for _, s := range res.Analysis.Summary {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	if len(res.Analysis.Risks) > 0 {
		fmt.Fprintln(w, "\nRisks:")
		for _, r := range res.Analysis.Risks {
			fmt.Fprintf(w, "  * %s", r.Label)
			if r.Reason != "" {
				fmt.Fprintf(w, ": %s", r.Reason)
			}
			fmt.Fprintln(w)
			if r.Excerpt != nil && strings.TrimSpace(*r.Excerpt) != "" {
				fmt.Fprintf(w, "    %q\n", *r.Excerpt)
			}
		}
	}
	fmt.Fprintf(w, "\n%s\n\n", res.Analysis.Disclaimer)
}
