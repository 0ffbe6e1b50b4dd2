// Package main provides maestrod, the media-session daemon. It supervises a
// browser, discovers playing media across its tabs, and exposes the session
// registry to control surfaces over HTTP and WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/maestro/pkg/config"
	"github.com/entrhq/maestro/pkg/coordinator"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/scanner"
	"github.com/entrhq/maestro/pkg/server"
)

const version = "0.1.0"

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		listenFlag   = flag.String("listen", "", "Listen address for the control API (overrides MAESTRO_LISTEN)")
		headlessFlag = flag.Bool("headless", false, "Run the supervised browser without a window")
		profilesFlag = flag.String("profiles", "", "Path to a user site-profile file (overrides MAESTRO_PROFILES)")
		showVersion  = flag.Bool("version", false, "Show version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "maestrod - media session daemon\n\n")
		fmt.Fprintf(os.Stderr, "Usage: maestrod [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_LISTEN                  Control API address (default 127.0.0.1:4725)\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_HEADLESS                Run the browser headless\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_PROFILES                User site-profile file\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_DISCOVERY_RETRIES       Discovery retry budget per page\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_DISCOVERY_RETRY_DELAY   Delay between discovery retries\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_POLL_INTERVAL           Virtual-source poll cadence\n")
		fmt.Fprintf(os.Stderr, "  MAESTRO_BROADCAST_MIN_INTERVAL  Per-session broadcast throttle\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("maestrod v%s\n", version)
		return
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *listenFlag != "" {
		rt.ListenAddr = *listenFlag
	}
	if *headlessFlag {
		rt.Headless = true
	}
	if *profilesFlag != "" {
		rt.ProfilePath = *profilesFlag
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, &rt); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context, rt *config.Runtime) error {
	logger, err := logging.New("maestrod")
	if err != nil {
		fmt.Fprintf(os.Stderr, "file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	logger.Infof("maestrod v%s starting", version)

	profiles, err := config.LoadProfiles(rt.ProfilePath)
	if err != nil {
		return fmt.Errorf("load site profiles: %w", err)
	}

	coord := coordinator.New(logger, rt.BroadcastMinInterval)

	scan := scanner.New(rt, profiles, coord, logger)
	if err := scan.Start(ctx); err != nil {
		return fmt.Errorf("start scanner: %w", err)
	}

	srv := server.New(rt.ListenAddr, coord, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			scan.Shutdown()
			return fmt.Errorf("control API: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("server shutdown: %v", err)
	}
	if err := scan.Shutdown(); err != nil {
		logger.Warnf("scanner shutdown: %v", err)
	}
	logger.Infof("maestrod stopped")
	return nil
}
