package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-connect4/internal/app"
	"github.com/vovakirdan/tui-connect4/internal/platform/tui"
	"github.com/vovakirdan/tui-connect4/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the connect4 SSH server",
	Long: `Start an SSH server for hot-seat games.

Each SSH connection gets its own board. Finished games of all
connections are recorded in the server's database.

Examples:
  connect4 serve                           # Listen on the configured address
  connect4 serve --ssh :2222               # Listen on port 2222
  connect4 serve --host-key ./my_host_key  # Use specific host key
  connect4 serve --db ./server.db          # Use specific database

Users can connect with:
  ssh localhost -p 2222`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), overrides config")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file, overrides config")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting, overrides config")
}

func runServe(_ *cobra.Command, _ []string) error {
	sshCfg := cfg.SSH
	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sshCfg.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		sshCfg.IdleTimeout = flagIdleTimeout
	}

	logger := app.NewLogger(cfg, os.Stderr).WithPrefix("connect4-ssh")

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open database, history is disabled", "err", err)
	} else {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		SSHConfig: sshCfg,
		Rules:     cfg.Game.Rules(),
		Store:     store,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Starting connect4 SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
