/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/minireact/core/generator"
	"github.com/tristendillon/minireact/core/logger"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Transpiles the source tree once",
	Long: `Discovers every file under the source directory, transforms scripts and
stylesheets, copies everything else and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("build called")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		t, err := generator.New(cfg)
		if err != nil {
			return err
		}

		logger.Info("Building %s -> %s", cfg.SrcDirPath(), cfg.DestDirPath())
		report, err := t.Build(cmd.Context())
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		report.Log()

		if report.Failed() {
			return fmt.Errorf("%d of %d files failed", len(report.Failures), report.Total())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
