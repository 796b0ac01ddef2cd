package main

import (
	"fmt"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/spf13/cobra"
)

var (
	mergeOutput    string
	mergeExclude   []string
	mergeRequired  []string
	mergePreserve  bool
	mergeBookmarks bool
	mergeMissing   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge MAIN [DOCUMENT...]",
	Short: "Append documents to a main document",
	Long: `Append each DOCUMENT, in order, to MAIN and write the result to --output.

The output may be the same file as MAIN; the original is only replaced once
the merged file has been written.`,
	Example: `  assemble merge report.pdf annex/*.pdf -o report.pdf --bookmark-documents --exclude '*_draft*'`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := assembly.MissingPolicy(mergeMissing)
		if policy != assembly.MissingStrict && policy != assembly.MissingLenient {
			return fmt.Errorf("%w: --missing must be strict or lenient, got %q", assembly.ErrInvalidSelection, mergeMissing)
		}

		res, err := newAssembler().Merge(cmd.Context(), assembly.MergeRequest{
			Main:       args[0],
			Additional: args[1:],
			Output:     mergeOutput,
			Options: assembly.MergeOptions{
				ExcludePatterns:               mergeExclude,
				RequiredSections:              mergeRequired,
				PreserveBookmarks:             mergePreserve,
				BookmarkPerAdditionalDocument: mergeBookmarks,
				MissingDocuments:              policy,
			},
		})
		if err != nil {
			return err
		}
		printMerge(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file")
	mergeCmd.Flags().StringArrayVarP(&mergeExclude, "exclude", "x", nil, "Skip documents whose file name matches this glob (repeatable)")
	mergeCmd.Flags().StringArrayVarP(&mergeRequired, "require", "r", nil, "Fail unless this section appears in a document (repeatable)")
	mergeCmd.Flags().BoolVar(&mergePreserve, "preserve-bookmarks", false, "Keep the bookmarks of every input")
	mergeCmd.Flags().BoolVar(&mergeBookmarks, "bookmark-documents", false, "Add a bookmark for each appended document")
	mergeCmd.Flags().StringVar(&mergeMissing, "missing", string(assembly.MissingStrict), "Missing document policy (strict, lenient)")
	mergeCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(mergeCmd)
}
