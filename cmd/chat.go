package main

import (
	"bufio"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"legal-lens/internal/apierr"
	"legal-lens/internal/client"
	"legal-lens/internal/models"
)

var (
	chatDocHash     string
	chatContext     string
	chatContextFile string
	chatFile        string
	chatServer      string
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about an analyzed document",
	Long: `Answers questions using the cached analysis of --doc-hash, or the text
given with --context / --context-file. With --file the document is analyzed
first. Without a question an interactive session starts; an empty line ends it.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatDocHash, "doc-hash", "", "content hash returned by analyze")
	chatCmd.Flags().StringVar(&chatContext, "context", "", "context text to answer from")
	chatCmd.Flags().StringVar(&chatContextFile, "context-file", "", "file holding context text")
	chatCmd.Flags().StringVar(&chatFile, "file", "", "analyze this document first and chat about it")
	chatCmd.Flags().StringVar(&chatServer, "server", "", "base URL of a running server")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	supplied := chatContext
	if chatContextFile != "" {
		data, err := os.ReadFile(chatContextFile)
		if err != nil {
			return err
		}
		supplied = string(data)
	}

	var (
		ask    func(context.Context, models.ChatRequest) (*models.ChatResponse, error)
		upload func(path string, data []byte) (*models.ProcessResult, error)
	)
	if chatServer != "" {
		c := client.New(chatServer, nil)
		ask = c.Chat
		upload = func(path string, data []byte) (*models.ProcessResult, error) {
			res, _, err := c.Upload(ctx, filepath.Base(path), data)
			return res, err
		}
	} else {
		p, closeFn, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		ask = p.Chat
		upload = func(path string, data []byte) (*models.ProcessResult, error) {
			return p.Process(ctx, &models.RawDocument{
				Data:      data,
				MediaType: mime.TypeByExtension(filepath.Ext(path)),
				Filename:  filepath.Base(path),
				Size:      int64(len(data)),
			})
		}
	}

	docHash := chatDocHash
	if chatFile != "" {
		data, err := os.ReadFile(chatFile)
		if err != nil {
			return err
		}
		res, err := upload(chatFile, data)
		if err != nil {
			return err
		}
		docHash = res.DocHash
	}

	w := cmd.OutOrStdout()
	if len(args) > 0 {
		resp, err := ask(ctx, models.ChatRequest{DocHash: docHash, Question: strings.Join(args, " "), Context: supplied})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, resp.Answer)
		return nil
	}

	var transcript []models.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}
		transcript = append(transcript, models.ChatMessage{Role: models.RoleUser, Text: question})

		resp, err := ask(ctx, models.ChatRequest{DocHash: docHash, Question: question, Context: supplied})
		if err != nil {
			if e, ok := apierr.As(err); ok {
				fmt.Fprintf(w, "error: %s\n", e.Message)
			} else {
				fmt.Fprintf(w, "error: %v\n", err)
			}
			continue
		}
		transcript = append(transcript, models.ChatMessage{Role: models.RoleAssistant, Text: resp.Answer})
		fmt.Fprintln(w, resp.Answer)
	}
	fmt.Fprintf(w, "\n%d messages exchanged\n", len(transcript))
	return scanner.Err()
}
