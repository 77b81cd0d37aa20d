// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the available transformation prompts",
	Long: `Prompts lists the transformation library by category. Use --search to
filter and --json for machine-readable output.`,
	RunE: runPrompts,
}

func init() {
	promptsCmd.Flags().String("search", "", "filter prompts by id, name, or description")
	promptsCmd.Flags().Bool("json", false, "emit JSON")

	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Filter(search))
	}

	if search != "" {
		matches := cat.Filter(search)
		if len(matches) == 0 {
			fmt.Println("No prompts match.")
			return nil
		}
		for _, p := range matches {
			fmt.Printf("%-20s  %-24s  %s\n", p.ID, p.Name, p.Description)
		}
		return nil
	}

	for _, group := range cat.Categories() {
		fmt.Printf("%s:\n", group.Name)
		for _, p := range group.Prompts {
			fmt.Printf("  %-20s  %-24s  %s\n", p.ID, p.Name, p.Description)
		}
		fmt.Println()
	}
	return nil
}
