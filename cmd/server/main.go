package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/api"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/collector"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/config"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/hub"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/plc"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/production"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/staging"
	"github.com/mohdhamzakhan/PLCDataCollector/internal/syncer"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "PLCDataCollector.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Load YAML line definitions
	linesPath := filepath.Join(exeDir, "lines.yaml")
	lines, err := config.LoadLines(linesPath)
	if err != nil {
		fmt.Printf("Failed to load line definitions: %v\n", err)
		os.Exit(1)
	}

	// Initialize the staging store
	store, err := staging.NewDuckStore(cfg.GetStagingDBPath())
	if err != nil {
		fmt.Printf("Failed to open staging store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize the sync target
	targetDB, err := sql.Open(cfg.Storage.TargetDriver, cfg.Storage.TargetDSN)
	if err != nil {
		fmt.Printf("Failed to open target database: %v\n", err)
		os.Exit(1)
	}
	defer targetDB.Close()

	target := staging.NewSQLTargetStore(targetDB)
	if err := target.EnsureSchema(); err != nil {
		fmt.Printf("Failed to prepare target schema: %v\n", err)
		os.Exit(1)
	}

	// Wire the background machinery
	monitor := syncer.NewMonitor(lines, store)
	engine := syncer.NewEngine(lines, store, target, monitor, cfg.DataSync)
	broadcast := hub.New()
	tracker := production.NewTracker(cfg.Graph.MaxDataPoints)
	reader := plc.NewAdapter()
	coll := collector.New(lines, reader, store, tracker, broadcast, cfg)

	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go coll.Run(ctx)
	go coll.RunHealthProbe(ctx)
	go engine.Run(ctx)

	// Initialize API handlers
	h := api.NewHandler(lines, monitor, store, reader, tracker, cfg)
	wsHandler := api.NewWSHandler(broadcast)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h, wsHandler)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PLC Data Collector                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Lines:     %-46d║\n", lines.Count())
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	// Serve until the context is cancelled, then drain
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
	}()

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Server stopped")
}
