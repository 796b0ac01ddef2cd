package main

import (
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline FILE",
	Short: "Print the page count and bookmark tree of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := newBackend(newLogger()).Open(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		forest, err := doc.Outline()
		if err != nil {
			return err
		}
		printOutline(cmd.OutOrStdout(), doc.Path(), doc.PageCount(), forest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
