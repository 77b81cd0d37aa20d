// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transformer-toolbox/internal/document"
	"github.com/pdiddy/transformer-toolbox/internal/ollama"
	"github.com/pdiddy/transformer-toolbox/internal/prefs"
)

var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "Apply transformation prompts to a file or stdin, once",
	Long: `Transform runs the toolbox pipeline headlessly: it extracts text from
the given file (TXT, Markdown, DOCX, or PDF; stdin is read as plain text),
applies the selected prompts through the local Ollama server, and writes
the result to stdout or --output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringSliceP("prompt", "p", nil, "prompt ID to apply (repeatable, up to 10; default basic_cleanup)")
	transformCmd.Flags().StringP("model", "m", "", "model name (default: last-used preference)")
	transformCmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")
	transformCmd.Flags().String("format", "", "declared input format: txt, markdown, docx, or pdf (default: from extension)")

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("no input text")
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	promptIDs, _ := cmd.Flags().GetStringSlice("prompt")
	systemPrompt, err := cat.SystemPrompt(promptIDs)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = prefs.NewStore("").Load().Model
	}

	client := ollama.New(modelConfig())
	fmt.Fprintf(os.Stderr, "transforming with %s (%d prompt(s))\n", model, max(len(promptIDs), 1))

	output, err := client.Generate(context.Background(), model, systemPrompt, text)
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
		return nil
	}

	fmt.Println(output)
	return nil
}

// readInput returns the text to transform: an extracted document when a
// file argument is given, stdin otherwise.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	formatTag, _ := cmd.Flags().GetString("format")
	var format document.Format
	if formatTag != "" {
		format, err = document.ParseFormat(formatTag)
	} else {
		format, err = document.Detect(path)
	}
	if err != nil {
		return "", err
	}

	return document.Extract(data, format)
}
