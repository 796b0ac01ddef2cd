package main

import (
	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	extractStart string
	extractEnd   string
	extractThrow bool
)

var extractCmd = &cobra.Command{
	Use:   "extract SOURCE OUTPUT",
	Short: "Copy a page range of one document into a new file",
	Long: `Copy a page range of SOURCE into OUTPUT.

Boundaries are written as:
  first | last | page N
  keyword "TEXT" [first|last|N] [include|exclude] [case-sensitive]

A keyword that is not found falls back to the first page for --start and
the last page for --end, unless --throw is set.`,
	Example: `  assemble extract report.pdf annex-b.pdf --start 'keyword "EK-B"' --end 'keyword "EK-C" exclude'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := manifest.ParseBoundary(extractStart)
		if err != nil {
			return err
		}
		end, err := manifest.ParseBoundary(extractEnd)
		if err != nil {
			return err
		}

		res, err := newAssembler().Extract(cmd.Context(), assembly.ExtractionRequest{
			Source:                 args[0],
			Output:                 args[1],
			Start:                  start,
			End:                    end,
			ThrowIfKeywordNotFound: extractThrow,
		})
		if err != nil {
			return err
		}
		printExtract(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractStart, "start", "first", "Start boundary")
	extractCmd.Flags().StringVar(&extractEnd, "end", "last", "End boundary")
	extractCmd.Flags().BoolVar(&extractThrow, "throw", false, "Fail when a keyword boundary is not found")

	rootCmd.AddCommand(extractCmd)
}
