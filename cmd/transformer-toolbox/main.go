// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transformer-toolbox CLI.
// The toolbox applies predefined transformation prompts to text through a
// locally running Ollama server; `serve` starts the interactive web session
// and `transform` runs the same pipeline headlessly.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the transformer-toolbox CLI.
var rootCmd = &cobra.Command{
	Use:   "transformer-toolbox",
	Short: "Apply LLM transformation prompts to text via a local Ollama server",
	Long: `transformer-toolbox is a local text-editing aid. It applies short,
predefined system prompts (cleanup, summarize, reformat, restyle) to pasted
or uploaded text using a model served by a locally running Ollama instance.

The primary surface is the web session started by "serve": a two-pane page
with input, a transformation selector, and editable output. "transform"
drives the same pipeline from the command line for one-shot use.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transformer-toolbox.yaml or ~/.config/transformer-toolbox/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transformer-toolbox")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transformer-toolbox"))
		}
	}

	viper.SetEnvPrefix("TRANSFORMER_TOOLBOX")
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
