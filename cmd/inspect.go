package cmd

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/tristendillon/minireact/core/generator"
	"github.com/tristendillon/minireact/core/logger"
)

var showDiff bool

// inspectCmd prints what a single file turns into without writing it.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the transpiled form of one source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		t, err := generator.New(cfg)
		if err != nil {
			return err
		}

		kind, src, out, err := t.Preview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		logger.Debug("%s classified as %s", args[0], kind)

		w := cmd.OutOrStdout()
		if !showDiff {
			_, err = w.Write(out)
			return err
		}

		dmp := diffmatchpatch.New()
		a, b, lines := dmp.DiffLinesToChars(string(src), string(out))
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
		_, err = fmt.Fprint(w, dmp.DiffPrettyText(diffs))
		return err
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&showDiff, "diff", false, "Show a colored diff against the source")
}
