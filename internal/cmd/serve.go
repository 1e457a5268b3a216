package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/podium/internal/arena"
	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host human_vs_human debates over websockets",
	Long: `Start the arena server. Debates are created over HTTP and each side
joins a room over a websocket:

  POST /debates            create a debate  {"topic": "...", "format": "ld"}
  GET  /debates            list open debates
  GET  /debates/:id        show a debate and its seats
  GET  /ws/:id/:side       join as side_a, side_b or watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from arena.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Arena.Address = serveAddr
	}

	logger := CreateLogger(cfg)
	defer func() { _ = logger.Close() }()

	hub := arena.NewHub(&cfg.Arena, logger)
	srv := arena.NewServer(hub, logger)
	watchArenaLimits(hub, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Arena.Address)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Arena listening on %s (ctrl+c to stop)\n", cfg.Arena.Address)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return fmt.Errorf("arena server: %w", err)
	case sig := <-sigChan:
		logger.Info("arena shutting down", "signal", sig.String())
	}
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("arena shutdown: %w", err)
	}
	return nil
}

// watchArenaLimits reloads room and speech limits when the config file
// changes. The listen address needs a restart.
func watchArenaLimits(hub *arena.Hub, logger *logging.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}
		hub.SetLimits(&cfg.Arena)
		logger.Info("arena limits reloaded", "max_rooms", cfg.Arena.MaxRooms, "max_speech_bytes", cfg.Arena.MaxSpeechBytes)
	})
	viper.WatchConfig()
}
