package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/pdfassembly/internal/manifest"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run MANIFEST",
	Short: "Run a Markdown assembly manifest",
	Long: `Run the merge or extraction described by a Markdown manifest.

Relative paths in the manifest are taken from the manifest's directory.`,
	Example: `  # annex-bundle.pdf

  ## Main
  - report.pdf

  ## Documents
  - annex/ek-a.pdf
  - annex/ek-b.pdf

  ## Options
  - bookmark documents: yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		plan, err := manifest.Parse(src)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		base := filepath.Dir(args[0])
		asm := newAssembler()
		switch plan.Kind {
		case manifest.KindExtract:
			req := *plan.Extract
			req.Source = relativeTo(base, req.Source)
			req.Output = relativeTo(base, req.Output)
			res, err := asm.Extract(cmd.Context(), req)
			if err != nil {
				return err
			}
			printExtract(cmd.OutOrStdout(), res)
		default:
			req := *plan.Merge
			req.Main = relativeTo(base, req.Main)
			req.Output = relativeTo(base, req.Output)
			additional := make([]string, len(req.Additional))
			for i, p := range req.Additional {
				additional[i] = relativeTo(base, p)
			}
			req.Additional = additional
			res, err := asm.Merge(cmd.Context(), req)
			if err != nil {
				return err
			}
			printMerge(cmd.OutOrStdout(), res)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func relativeTo(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
