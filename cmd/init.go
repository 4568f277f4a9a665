/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/template_engine"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default minireact.yaml",
	Long:  `Creates a minireact.yaml with every option set to its default value.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		target := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(target); err == nil {
			if !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", target)
			}
			logger.Debug("%s already exists. Overwriting.", target)
		}

		data := struct {
			*config.Config
			Timestamp time.Time
		}{config.Default(), time.Now()}

		engine := template_engine.NewTemplateEngine()
		if err := engine.GenerateFile(template_engine.TEMPLATES.INIT.CONFIG, target, data); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("Wrote %s", target)

		fmt.Printf("Next Steps:\n")
		if dir != "." {
			fmt.Printf("  - cd %s\n", dir)
		}
		fmt.Printf("  - minireact build\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
}
