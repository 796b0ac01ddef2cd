package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfassembly/internal/api"
	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/config"
	"github.com/dgallion1/pdfassembly/internal/pdfdoc"
	"github.com/dgallion1/pdfassembly/internal/pipeline"
	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := &pdfdoc.Backend{
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		RelaxedValidation: cfg.PDFRelaxedValidation,
		Log:               log,
	}
	asm := assembly.New(backend, log)

	orch := pipeline.NewOrchestrator(cfg, asm, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, backend, log, cfg)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Error("listen", "port", cfg.Port, "error", err)
		os.Exit(1)
	}
	ln = netutil.LimitListener(ln, cfg.MaxConnections)

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting pdfassembly",
		"port", cfg.Port,
		"document_root", cfg.DocumentRoot,
		"workers", cfg.WorkerCount,
		"max_connections", cfg.MaxConnections,
	)
	if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
