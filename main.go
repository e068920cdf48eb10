package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-bot/api"
	"weather-bot/bot"
	"weather-bot/cache"
	"weather-bot/datasource"
	"weather-bot/dispatch"
	"weather-bot/scheduler"
	"weather-bot/tracing"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	configFile := flag.String("config", "config.yaml", "Path to the optional YAML configuration file")
	port := flag.Int("port", 8080, "Port for the status API (0 disables it)")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable weather API rate limiting")
	cacheTTL := flag.Duration("cache", 10*time.Minute, "How long fetched forecasts are reused (0 disables caching)")
	flag.Parse()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if config.Env == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	shutdownTracing, err := tracing.Init(config.ZipkinURL, "weather-bot", version)
	if err != nil {
		sugar.Fatalf("tracing: %v", err)
	}

	loc, err := config.Location()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}
	hour, minute, err := datasource.ParseSendTime(config.SendTime)
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	source, err := datasource.NewForecastSource(config)
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}
	if *enableRateLimiting {
		// OpenWeatherMap free tier allows 60 calls/minute; allow a burst of one full city run
		source = datasource.NewRateLimitedForecastSource(source, 1.0, len(config.Cities))
		sugar.Infow("applied rate limiting", "source", source.Name())
	}
	if *cacheTTL > 0 {
		source = cache.NewCachedForecastSource(source, *cacheTTL, sugar)
	}

	telegram, err := bot.New(config.TelegramToken, sugar)
	if err != nil {
		sugar.Fatalf("telegram: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(source, config.Cities, telegram, loc, sugar)

	var handlers *bot.Handlers
	daily := scheduler.New(hour, minute, loc, func(ctx context.Context, chatID int64) {
		handlers.DailyJob(ctx, chatID)
	}, sugar)
	handlers = bot.NewHandlers(dispatcher, daily, sugar)
	telegram.Register(handlers)

	sugar.Infow("starting bot",
		"provider", source.Name(),
		"cities", len(config.Cities),
		"send_time", config.SendTime,
		"timezone", loc.String(),
	)

	daily.Start()
	go telegram.Start()

	var server *api.Server
	if *port != 0 {
		server = api.NewServer(dispatcher, daily, *port, sugar)
		go func() {
			if err := server.Start(); err != nil {
				sugar.Errorw("status server stopped", "error", err)
			}
		}()
	}

	// Wait for shutdown signal
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownChan
	sugar.Infow("shutting down", "signal", sig.String())

	telegram.Stop()
	daily.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			sugar.Errorw("status server shutdown", "error", err)
		}
	}
	if err := shutdownTracing(ctx); err != nil {
		sugar.Errorw("tracing shutdown", "error", err)
	}

	sugar.Info("shutdown complete")
}
