/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/minireact/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of minireact",
	Long:  `Displays the version of minireact.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("minireact %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
