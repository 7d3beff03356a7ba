package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"legal-lens/internal/helper"
	"legal-lens/internal/parser"
)

var extractShowText bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract the text of a document and print its content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractShowText, "text", false, "print the extracted text")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	out, err := parser.NewExtractor(cfg.Extract).Extract(cmd.Context(), data, mime.TypeByExtension(filepath.Ext(args[0])), filepath.Base(args[0]))
	if err != nil {
		var failure *parser.ExtractionFailure
		if errors.As(err, &failure) {
			return fmt.Errorf("%s", failure.Message)
		}
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "method:    %s\n", out.Method)
	fmt.Fprintf(w, "format:    %s\n", out.MediaType)
	fmt.Fprintf(w, "length:    %d\n", out.Length)
	fmt.Fprintf(w, "truncated: %t\n", out.Truncated)
	fmt.Fprintf(w, "hash:      %s\n", helper.HashText(out.Text))
	if extractShowText {
		fmt.Fprintf(w, "\n%s\n", out.Text)
	}
	return nil
}
