// Package main provides maestro, the terminal control surface. It mirrors
// the daemon's session registry over WebSocket and renders it as an
// interactive session list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/surface"
	"github.com/entrhq/maestro/pkg/tui"
	"github.com/entrhq/maestro/pkg/types"
)

const version = "0.1.0"

func main() {
	var (
		addr        = flag.String("addr", "127.0.0.1:4725", "Address of the maestrod control API")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "maestro - terminal media controller\n\n")
		fmt.Fprintf(os.Stderr, "Usage: maestro [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("maestro v%s\n", version)
		return
	}

	if err := run(*addr); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run(addr string) error {
	logger, err := logging.New("maestro")
	if err != nil {
		fmt.Fprintf(os.Stderr, "file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	logger.Infof("maestro v%s connecting to %s", version, addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client feeds the mirror; the mirror's commands flow back out
	// through the client. The program pointer breaks the construction
	// cycle: the handler only runs after Run starts.
	var program *tea.Program
	var mirror *surface.Mirror

	client := surface.NewClient(addr, func(msg types.Message) {
		mirror.Handle(msg)
		if program != nil {
			program.Send(tui.RefreshMsg{})
		}
	}, logger)
	mirror = surface.NewMirror(client.Send)

	model := tui.New(mirror, logger)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go client.Run(ctx)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
