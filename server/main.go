package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizim-dunyamiz/server/games"
	"bizim-dunyamiz/server/pubsub"
	"bizim-dunyamiz/server/store"

	"github.com/joho/godotenv"
)

func mustEnv(keys ...string) {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			log.Fatalf("Missing required env var %s. Put it in .env (dev) or set it on the host (prod).", k)
		}
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate bool
	for _, a := range os.Args[1:] {
		if a == "--migrate" {
			migrate = true
		}
	}

	mustEnv("DATABASE_URL")
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	anniversary, err := time.Parse("2006-01-02", cfg.AnniversaryDate)
	if err != nil {
		log.Fatalf("bad ANNIVERSARY_DATE %q: %v", cfg.AnniversaryDate, err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close(context.Background())

	if migrate || cfg.AutoMigrate {
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrated")
		if migrate {
			return
		}
	}

	// NATS is optional; without it the change feeds degrade to polling.
	var bus *pubsub.Bus
	if cfg.NATSURL != "" {
		bus, err = pubsub.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("NATS disabled (connect failed): %v", err)
			bus = nil
		} else {
			defer bus.Close()
			log.Printf("NATS connected: %s", cfg.NATSURL)
		}
	}

	sessions := newRegistry()
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for range t.C {
			if n := sessions.prune(2 * time.Hour); n > 0 {
				log.Printf("pruned %d idle sessions (%d live)", n, sessions.len())
			}
		}
	}()

	a := &api{
		db:          db,
		bus:         bus,
		sessions:    sessions,
		dice:        games.NewDice(0),
		anniversary: anniversary,
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     Router(a),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE change feeds hold their connections open.
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		log.Println("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
