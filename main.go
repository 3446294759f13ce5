// Command tactics-grid serves turn-based tactics boards.
//
// It supports two modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from a TOML file; flags and environment variables override it.
// A .env file in the working directory is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tactics-grid/api"
	"github.com/wricardo/tactics-grid/game/config"
	"github.com/wricardo/tactics-grid/game/service"
	"github.com/wricardo/tactics-grid/game/session"
	"github.com/wricardo/tactics-grid/settings"
	"github.com/wricardo/tactics-grid/transport/mcp"
	"github.com/wricardo/tactics-grid/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tactics Grid Server"
)

func main() {
	loadDotEnv(os.Stderr)

	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name, err)
		os.Exit(1)
	}
}

// loadDotEnv loads .env (or the given files) into the environment. A missing
// file is fine; anything else is reported to w before flags are parsed.
func loadDotEnv(w io.Writer, filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "warning: loading .env: %v\n", err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "settings",
			Value:   "server.toml",
			Usage:   "TOML settings file (missing file means defaults)",
			Sources: cli.EnvVars("TACTICS_SETTINGS"),
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:  "host",
			Value: "localhost",
			Usage: "HTTP server host",
		},
		&cli.StringFlag{
			Name:    "config-dir",
			Usage:   "Directory containing board configurations",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "json or console",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
		&cli.FloatFlag{
			Name:  "move-speed",
			Usage: "Unit walking speed in pixels per second",
		},
	}
}

func ngrokFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// newCommand builds the CLI. Running it without a subcommand serves HTTP.
func newCommand() *cli.Command {
	serveFlags := append(commonFlags(), ngrokFlags()...)

	return &cli.Command{
		Name:    "tactics-grid",
		Usage:   AppName,
		Version: Version,
		Flags:   serveFlags,
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags:   append(commonFlags(), ngrokFlags()...),
				Action:  runServe,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Flags:   commonFlags(),
				Action:  runStdioMCP,
			},
		},
	}
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	st, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("port") {
		st.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		st.Server.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("log-level") {
		st.Logging.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		st.Logging.Format = cmd.String("log-format")
	}
	if cmd.IsSet("move-speed") {
		st.Game.MoveSpeed = cmd.Float("move-speed")
	}
	if cmd.IsSet("ngrok") {
		st.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		st.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// newLogger builds the process logger. Console output is for humans; json for collectors.
func newLogger(st settings.LoggingSettings) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(st.Level)
	if err != nil {
		return nil, err
	}

	var zapCfg zap.Config
	if st.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

// services holds the wired managers shared by both modes
type services struct {
	configs *config.Manager
	game    service.GameService
}

// initializeServices wires the config and session managers and the game service
func initializeServices(st *settings.Settings, logger *zap.Logger) (*services, error) {
	configManager, err := config.NewManager(st.Server.ConfigDir, config.WithLogger(logger.Named("config")))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(
		session.WithMoveSpeed(st.Game.MoveSpeed),
		session.WithLogger(logger.Named("session")),
	)

	gameService := service.NewGameService(sessionManager, configManager, service.WithLogger(logger.Named("service")))

	return &services{
		configs: configManager,
		game:    gameService,
	}, nil
}

// startBackground launches the hub, the animation ticker and session cleanup.
// Everything stops when ctx is cancelled; the returned WaitGroup tracks them.
func startBackground(ctx context.Context, st *settings.Settings, svc *services, hub *websocket.Hub, logger *zap.Logger) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		tickRoutine(ctx, svc.game, hub, st.Game.TickRate, logger)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.game, st.Game.CleanupInterval, st.Game.SessionMaxAge, logger)
	}()

	return &wg
}

// tickRoutine advances every walking unit at a fixed rate and pushes the
// resulting frames and completion events to WebSocket clients.
func tickRoutine(ctx context.Context, gameService service.GameService, hub *websocket.Hub, rate time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			results, err := gameService.Tick(ctx, dt)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("tick failed", zap.Error(err))
				}
				continue
			}
			for _, r := range results {
				hub.BroadcastToSession(r.SessionID, r.State)
				hub.BroadcastEvents(r.SessionID, r.Events)
			}
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window. It goes through the game service so cleanup never
// overlaps a tick.
func sessionCleanupRoutine(ctx context.Context, gameService service.GameService, interval, maxAge time.Duration, logger *zap.Logger) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := gameService.CleanupExpiredSessions(ctx, maxAge)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("session cleanup failed", zap.Error(err))
				}
				continue
			}
			if removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// newMCPHandler serves single JSON-RPC messages over HTTP POST
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		}
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(st.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	svc, err := initializeServices(st, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(websocket.WithLogger(logger.Named("ws")))
	background := startBackground(ctx, st, svc, hub, logger)

	apiServer := api.NewServer(svc.game, hub, api.WithLogger(logger.Named("http")))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), st.Server.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if st.Ngrok.Enabled {
		background.Add(1)
		go func() {
			defer background.Done()
			runNgrok(ctx, st.Ngrok, cmd.String("ngrok-auth"), mainRouter, logger.Named("ngrok"))
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	background.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves the router through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, st settings.NgrokSettings, authToken string, handler http.Handler, logger *zap.Logger) {
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if st.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(st.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	logger.Info("ngrok tunnel established",
		zap.String("url", tun.URL()),
		zap.String("api", tun.URL()+"/api"),
		zap.String("mcp", tun.URL()+"/mcp"),
	)

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a server already answers on baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured port; otherwise it starts an internal one on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(st.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), st.Server.Port)
	if externalAPIAvailable(baseURL) {
		logger.Info("using external API server", zap.String("url", baseURL))
	} else {
		svc, err := initializeServices(st, logger)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		hub := websocket.NewHub(websocket.WithLogger(logger.Named("ws")))
		background := startBackground(ctx, st, svc, hub, logger)
		defer background.Wait()

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, hub, api.WithLogger(logger.Named("http"))),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		logger.Info("started internal API server", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	err = stdio.Listen(ctx, os.Stdin, os.Stdout)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
