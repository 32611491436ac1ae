package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-sentiment/internal/stocknews/config"
	delivery "golang-stock-sentiment/internal/stocknews/delivery/http"
	_ "golang-stock-sentiment/internal/stocknews/docs"
	"golang-stock-sentiment/internal/stocknews/repository"
	"golang-stock-sentiment/internal/stocknews/service"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/metrics"
	"golang-stock-sentiment/pkg/postgres"
	"golang-stock-sentiment/pkg/redis"
	"golang-stock-sentiment/pkg/sentiment"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the news sentiment service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting News Sentiment Service",
		logger.Field("name", cfg.App.Name),
		logger.StringField("provider", cfg.News.Provider),
	)

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		appLogger.Fatal("Failed to get database handle", logger.ErrorField(err))
	}
	defer sqlDB.Close()

	// Optional event stream
	publisher := repository.NewNopEventPublisher()
	if cfg.Redis.Enabled {
		redisCfg := redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		redisClient, err := redis.NewClient(redisCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		publisher = repository.NewSentimentEventPublisher(redisClient, cfg.Redis.StreamMaxLen)
	}

	m := metrics.NewNop()
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	// Initialize repositories
	stockNewsRepo := repository.NewStockNewsRepository(db.DB)
	stocksRepo := repository.NewStocksRepository(db.DB)

	var fetcher repository.NewsFetcher
	switch cfg.News.Provider {
	case config.ProviderGoogleRSS:
		fetcher = repository.NewGoogleRSSRepository(cfg, appLogger, m)
	default:
		fetcher = repository.NewNewsAPIRepository(cfg, appLogger, m)
	}

	stocks, err := stocksRepo.GetStocks(ctx)
	if err != nil {
		appLogger.Warn("Failed to load stock aliases, using built-in table", logger.ErrorField(err))
	}
	aliases := service.NewAliasTable(service.DefaultAliases(), stocks, cfg.Sentiment.Aliases)
	appLogger.Info("Alias table loaded", logger.IntField("symbols", aliases.Len()))

	// Initialize services
	newsSentimentSvc := service.NewNewsSentimentService(
		cfg.Sentiment,
		appLogger,
		stockNewsRepo,
		fetcher,
		sentiment.NewAnalyzer(cfg.Sentiment.ClassifierMemo),
		aliases,
		publisher,
		m,
	)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	newsSentimentHandler := delivery.NewNewsSentimentHandler(newsSentimentSvc, appLogger)
	healthHandler := delivery.NewHealthHandler(sqlDB.PingContext, appLogger)

	root := e.Group("")
	newsSentimentHandler.RegisterRoutes(root)
	healthHandler.RegisterRoutes(root)

	apiV1 := e.Group("/api/v1")
	newsSentimentHandler.RegisterRoutes(apiV1)

	e.GET("/swagger/*", swagger.WrapHandler)
	if cfg.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock News Sentiment API
// @version 1.0
// @description Recent headlines and sentiment labels for a stock ticker.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{Use: "sentiment-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-sentiment.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing sentiment-service CLI: %s\n", err)
		os.Exit(1)
	}
}
