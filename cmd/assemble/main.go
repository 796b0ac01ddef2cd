package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/pdfdoc"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	pdftotext    bool
	relaxedCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Extract page ranges from and merge PDF documents",
	Long: `assemble builds PDF deliverables from existing documents.

It extracts page ranges chosen by page number or keyword, merges a main
document with annexes while keeping or generating bookmarks, and runs
Markdown manifests that describe either operation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine decisions to stderr")
	rootCmd.PersistentFlags().BoolVar(&pdftotext, "pdftotext", false, "Fall back to the pdftotext command for unreadable pages")
	rootCmd.PersistentFlags().BoolVar(&relaxedCheck, "relaxed", true, "Use relaxed PDF validation")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newBackend(log *slog.Logger) *pdfdoc.Backend {
	return &pdfdoc.Backend{
		FallbackPdftotext: pdftotext,
		RelaxedValidation: relaxedCheck,
		Log:               log,
	}
}

func newAssembler() *assembly.Assembler {
	log := newLogger()
	return assembly.New(newBackend(log), log)
}
