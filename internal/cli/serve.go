package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thruflo/logo/internal/config"
	"github.com/thruflo/logo/internal/logging"
	"github.com/thruflo/logo/internal/server"
)

var (
	serveConfigPath  string
	serveHost        string
	servePort        int
	serveWidth       int
	serveHeight      int
	serveLogLevel    string
	serveWSPort      int
	serveDiagnostics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the logo server",
	Long: `Start the logo TCP server. Settings come from logo.yaml (or --config) and
can be overridden with flags.

Use --ws-port to also accept WebSocket clients on ws://<host>:<port>/ws.

Example:
  logo serve
  logo serve --port 9000 --width 60 --height 20
  logo serve --config /etc/logo.yaml --ws-port 8125 --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", config.DefaultConfigFile, "path to the YAML config file")
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "interface to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "TCP port (0 picks a free port)")
	serveCmd.Flags().IntVar(&serveWidth, "width", config.DefaultCanvasWidth, "canvas width in cells")
	serveCmd.Flags().IntVar(&serveHeight, "height", config.DefaultCanvasHeight, "canvas height in cells")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	serveCmd.Flags().IntVar(&serveWSPort, "ws-port", config.DefaultWebSocketPort, "also serve WebSocket clients on this port")
	serveCmd.Flags().BoolVar(&serveDiagnostics, "diagnostics", false, "reply \"error: ...\" to malformed commands")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return serve(ctx, cfg, logger)
}

// loadServeConfig reads the config file and applies any flags the user set.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("width") {
		cfg.Canvas.Width = serveWidth
	}
	if flags.Changed("height") {
		cfg.Canvas.Height = serveHeight
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if flags.Changed("ws-port") {
		cfg.WebSocket = &config.WebSocketConfig{Port: serveWSPort}
	}
	if flags.Changed("diagnostics") {
		cfg.Session.Diagnostics = serveDiagnostics
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs the TCP server, and the WebSocket server when configured,
// until ctx is cancelled or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	tcp, err := server.NewServerFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	type starter interface {
		Start(context.Context) error
		Stop() error
	}
	servers := []starter{tcp}

	if cfg.WebSocket != nil {
		ws, err := server.NewWebSocketServerFromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create websocket server: %w", err)
		}
		servers = append(servers, ws)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv starter) {
			errCh <- srv.Start(ctx)
		}(srv)
	}

	var firstErr error
	for range servers {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			logger.Error("server failed", "error", err)
			cancel()
		}
	}
	return firstErr
}
