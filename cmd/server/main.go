package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/drawdash/server/internal/game"
	"github.com/drawdash/server/internal/server"
	"github.com/drawdash/server/internal/store"
)

func main() {
	// Missing .env is fine; the environment may carry everything already.
	_ = godotenv.Load()

	port := 3000
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid PORT %q: %v", v, err)
		}
		port = p
	}

	var archive game.Archive
	if url := os.Getenv("DATABASE_URL"); url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a, err := store.NewMatchArchive(ctx, url)
		cancel()
		if err != nil {
			log.Fatalf("match archive: %v", err)
		}
		defer a.Close()
		archive = a
	} else {
		log.Println("DATABASE_URL not set, match archiving disabled")
	}

	srv := server.New(port, os.Getenv("STATIC_DIR"), archive)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%d", port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("forced shutdown: %v", err)
		}
	}
}
