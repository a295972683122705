// Package app wires config, storage, the provider client and the services
// into one App shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/marketctx/internal/clients/eodhd"
	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/services/marketctx"
	"github.com/bobmcallan/marketctx/internal/services/news"
	"github.com/bobmcallan/marketctx/internal/services/session"
	syncsvc "github.com/bobmcallan/marketctx/internal/services/sync"
	"github.com/bobmcallan/marketctx/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	EODHDClient    interfaces.EODHDClient
	SyncService    interfaces.SyncService
	NewsService    interfaces.NewsService
	ContextService interfaces.ContextService
	SessionCache   interfaces.SessionCache
	MCPServer      *server.MCPServer
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, then
// MARKETCTX_CONFIG, then marketctx.toml beside the binary, then
// config/marketctx.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("MARKETCTX_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "marketctx.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/marketctx.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads config, connects storage and builds every service.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - sync and news calls will fail upstream")
	}

	eodhdClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	a := NewAppWithDeps(config, logger, storageManager, eodhdClient)
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// NewAppWithDeps builds the services over already constructed dependencies.
func NewAppWithDeps(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager, eodhdClient interfaces.EODHDClient) *App {
	mcpServer := server.NewMCPServer(
		"marketctx",
		common.Version,
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		EODHDClient:    eodhdClient,
		SyncService:    syncsvc.NewService(eodhdClient, storageManager, logger),
		NewsService:    news.NewService(eodhdClient, storageManager, logger),
		ContextService: marketctx.NewBuilder(storageManager.PriceStore(), storageManager.UniverseStore(), logger),
		SessionCache:   session.NewCache(config.Session, logger),
		MCPServer:      mcpServer,
		StartupTime:    time.Now(),
	}

	a.registerTools()
	return a
}

// DefaultExchange returns the exchange applied to bare tickers.
func (a *App) DefaultExchange() string {
	return a.Config.Clients.EODHD.GetDefaultExchange()
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
		a.Storage = nil
	}
}

// StartScheduler launches the news purge and session sweep loops.
func (a *App) StartScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go startNewsPurge(ctx, a.Storage.NewsStore(), a.Config.News, a.Logger, a.Config.News.GetPurgeInterval())
	go startSessionSweep(ctx, a.SessionCache, a.Logger, sessionSweepInterval(a.Config.Session.GetTTL()))
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	exchange := a.DefaultExchange()
	logger := a.Logger

	s.AddTool(createGetStockContextTool(), handleGetStockContext(a.ContextService, exchange, logger))
	s.AddTool(createGetUniverseTopTool(), handleGetUniverseTop(a.ContextService, logger))
	s.AddTool(createGetStockNewsTool(), handleGetStockNews(a.NewsService, a.ContextService, exchange, logger))
	s.AddTool(createGetAutoContextTool(), handleGetAutoContext(a.ContextService, exchange, logger))
}
