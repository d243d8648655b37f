package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/portfolio"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Errorf("load config: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("config validation: %v", err)
		return 1
	}
	setupLogging(cfg.Log.Level, cfg.Log.Format)
	logrus.Info("TrendSentinel starting...")

	symbols, err := collector.LoadUniverse(cfg.Universe.File, cfg.Universe.Column, cfg.Universe.Suffix)
	if err != nil {
		logrus.Errorf("%v: universe %s: %v", config.ErrConfiguration, cfg.Universe.File, err)
		return 1
	}
	logrus.Infof("universe: %d symbols from %s", len(symbols), cfg.Universe.File)

	engine, err := buildEngine(cfg.Detectors)
	if err != nil {
		logrus.Errorf("build detectors: %v", err)
		return 1
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.Market.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Proxy, cfg.Market.Timeout, cfg.Market.RequestsPerSecond)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.Market.Timeout, cfg.Market.RequestsPerSecond)
	}
	if rdb := connectRedis(cfg); rdb != nil {
		defer rdb.Close()
		fetcher = collector.NewCachingFetcher(rdb, cfg.Cache.TTL, fetcher, cfg.Cache.Namespace)
	}
	logrus.Infof("data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Floor(), engine.Intervals())

	store, err := portfolio.NewStore(cfg.Portfolio.Kind, cfg.Portfolio.File)
	if err != nil {
		logrus.Errorf("%v: %v", config.ErrConfiguration, err)
		return 1
	}

	// Init notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			logrus.Warnf("init telegram notifier failed, notifications disabled: %v", err)
		} else {
			n = tn
		}
	}

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.Warnf("init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, symbols, col, engine, store, n, rec)

	if cfg.Schedule.Mode == config.ModeOnce {
		if err := sched.RunNow(); err != nil {
			logrus.Errorf("run: %v", err)
			return 1
		}
		return 0
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logrus.Errorf("register cron task: %v", err)
		return 1
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Schedule.RunOnStart {
		logrus.Info("RUN_ON_START enabled, scanning now")
		go func() {
			if err := sched.RunNow(); err != nil {
				logrus.Errorf("startup run: %v", err)
			}
		}()
	}

	logrus.Infof("TrendSentinel is running (cron %q). Press Ctrl+C to stop.", cfg.Schedule.Cron)
	<-ctx.Done()
	logrus.Info("shutdown signal received, stopping...")
	return 0
}

func setupLogging(level, format string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(lvl)
	}
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// connectRedis returns nil when no address is configured or Redis is unreachable.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.Cache.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Warnf("redis %s unreachable, cache disabled: %v", cfg.Cache.RedisAddr, err)
		_ = rdb.Close()
		return nil
	}
	logrus.Infof("redis cache: %s", cfg.Cache.RedisAddr)
	return rdb
}
