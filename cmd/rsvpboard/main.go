package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/config"
	"github.com/itsHabib/rsvpboard/internal/web"
)

const shutdownTimeout = 10 * time.Second

var configFile = flag.String("f", "etc/rsvpboard.yaml", "the config file")

func main() {
	flag.Parse()

	c, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}
	if err := c.SetUp(); err != nil {
		log.Fatalf("unable to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.ResolveSecrets(ctx); err != nil {
		log.Fatalf("unable to resolve secrets: %v", err)
	}
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	loc, err := c.Location()
	if err != nil {
		log.Fatalf("unable to load location: %v", err)
	}

	gymService, err := c.NewGymService()
	if err != nil {
		log.Fatalf("unable to create gym service: %v", err)
	}
	b, err := board.New(gymService, board.Options{
		Days:               c.Gym.Days,
		TolerateTaskErrors: c.Gym.TolerateTaskErrors,
		Location:           loc,
	})
	if err != nil {
		log.Fatalf("unable to create board: %v", err)
	}
	notifier, err := c.Notifier()
	if err != nil {
		log.Fatalf("unable to create notifier: %v", err)
	}
	srv, err := web.NewServer(b, notifier)
	if err != nil {
		log.Fatalf("unable to create server: %v", err)
	}

	csrfKey, err := loadCSRFKey(c)
	if err != nil {
		log.Fatalf("unable to load csrf key: %v", err)
	}
	secure := c.Env == "production"

	srv.LoadInBackground(ctx)

	httpServer := &http.Server{
		Addr:              c.ListenOn,
		Handler:           srv.Handler(csrfKey, secure, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logx.Errorf("unable to shut down: %v", err)
		}
	}()

	logx.Infof("serving class board on %s", c.ListenOn)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("unable to serve: %v", err)
	}
	logx.Close()
}

// loadCSRFKey returns the configured key or, outside production, a random one.
func loadCSRFKey(c *config.Config) ([]byte, error) {
	key, err := c.CSRFAuthKey()
	if err != nil || key != nil {
		return key, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	logx.Info("using random csrf key, forms will not survive a restart")

	return key, nil
}
