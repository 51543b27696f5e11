// Command groundwork-server exposes the procedure layer over HTTP: dotted
// procedure names under POST /rpc/{procedure}, plus a health endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	groundwork "github.com/calebwray/groundwork"
	"github.com/calebwray/groundwork/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "groundwork-server: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	store, err := storage.Open(cfg.Database.URL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "groundwork-server: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Migrate(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "groundwork-server: %v\n", err)
		os.Exit(1)
	}
	cancel()

	engine := groundwork.New(store)
	auth := newAuthenticator(cfg.Auth.Secret, cfg.Auth.Cookie)
	mux := newRouter(engine, auth)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      logging(recovery(tracing(mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("groundwork-server: listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("groundwork-server: %v", err)
		}
	}()

	<-done
	log.Println("groundwork-server: shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("groundwork-server: shutdown error: %v", err)
	}
	log.Println("groundwork-server: stopped")
}
