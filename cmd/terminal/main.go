package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/JackWithOneEye/pcviewer/internal/config"
	"github.com/JackWithOneEye/pcviewer/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var addr string

	cmd := &cobra.Command{
		Use:           "terminal",
		Short:         "Stream a point-cloud animation into the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = net.JoinHostPort("localhost", strconv.FormatUint(uint64(config.NewConfig().Port()), 10))
			}

			// the TUI owns stdout
			log.Logger = zerolog.Nop()
			if len(os.Getenv("DEBUG")) > 0 {
				f, err := os.OpenFile("debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				log.Logger = zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
			}

			p := tea.NewProgram(tui.NewUIModel(addr), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running terminal UI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "stream server address (default localhost:$PORT)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
