/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "minireact",
	Short: "Transpiles a mini-program source tree into a React project.",
	Long: `minireact rewrites a mini-program source tree into React-compatible JavaScript.
Components are mapped to web or library components, pages become lazily loaded
routes, stylesheet rpx units become rem, and every other file is copied as-is.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		logger.SetNoColor(noColor)
		logger.SetErrorWriter()
		if logfile == "" {
			return nil
		}

		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger.AddWriterForAll(f)
		return nil
	},
}

var (
	logfile    string
	verbose    bool
	noColor    bool
	configPath string
	srcDir     string
	destDir    string
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the project config and applies command line overrides.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	path := configPath
	if path == "" {
		path = filepath.Join(wd, config.FileName)
	}

	cfg, err := config.LoadFrom(wd, path)
	if err != nil {
		return nil, err
	}
	if srcDir != "" {
		cfg.Source.Dir = srcDir
	}
	if destDir != "" {
		cfg.Destination.Dir = destDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&srcDir, "src", "", "Override source.dir")
	rootCmd.PersistentFlags().StringVar(&destDir, "dest", "", "Override destination.dir")
}
