package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"quizbot/bot"
	"quizbot/catalog"
	"quizbot/config"
	"quizbot/httpapi"
	"quizbot/logger"
	"quizbot/quiz"
	"quizbot/store"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set in the environment, .env or config.yaml")
	}

	db, err := store.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	repos := store.NewRepos(db, log)

	var (
		sessions quiz.SessionStore
		memory   *quiz.MemorySessionStore
	)
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Redis unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		sessions = quiz.NewRedisSessionStore(rdb, cfg.SessionTTL)
	default:
		memory = quiz.NewMemorySessionStore(nil)
		sessions = memory
	}

	policy, err := quiz.PolicyByName(cfg.QuotaPolicy)
	if err != nil {
		log.Fatal("Invalid quota policy", "error", err)
	}
	engine := quiz.New(repos, sessions, log, quiz.Options{
		Location:      cfg.Location,
		DailyCap:      cfg.DailyCap,
		PackSize:      cfg.PackSize,
		UnlimitedDays: cfg.UnlimitedDays,
		Policy:        policy,
	})
	if err := engine.SeedOwners(context.Background(), cfg.AdminIDs); err != nil {
		log.Fatal("Failed to seed admins", "error", err)
	}

	importer := catalog.NewImporter(repos.Questions, catalog.NewClient(), log)

	b, err := bot.NewBot(engine, importer, bot.Options{
		Token:               cfg.BotToken,
		MonetizationEnabled: cfg.MonetizationEnabled,
		TestMode:            cfg.TestMode,
		Products: quiz.Products{
			Pack10:      cfg.Pack10Stars,
			Unlimited30: cfg.Unlimited30Stars,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to create bot", "error", err)
	}

	var api *httpapi.Server
	if cfg.HTTPAddr != "" {
		if strings.HasPrefix(strings.ToLower(cfg.LogMode), "prod") {
			gin.SetMode(gin.ReleaseMode)
		}
		api = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewQuizHandler(engine, log))
		go func() {
			log.Info("Ops API listening", "addr", cfg.HTTPAddr)
			if err := api.Run(); err != nil {
				log.Error("Ops API stopped", "error", err)
			}
		}()
	}

	// Scheduler
	c := cron.New(cron.WithLocation(cfg.Location))

	if memory != nil {
		c.AddFunc("*/10 * * * *", func() {
			if n := memory.Sweep(cfg.SessionTTL); n > 0 {
				log.Debug("Swept idle sessions", "count", n)
			}
		})
	}

	if cfg.QuestionBankURL != "" {
		_, err := c.AddFunc(cfg.QuestionSyncCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			report, err := importer.Sync(ctx, cfg.QuestionBankURL)
			if err != nil {
				log.Error("Question sync failed", "url", cfg.QuestionBankURL, "error", err)
				return
			}
			log.Info("Question sync done", "inserted", report.Inserted, "duplicates", report.Duplicates, "errors", report.Errors)
		})
		if err != nil {
			log.Fatal("Invalid QUESTION_SYNC_CRON", "schedule", cfg.QuestionSyncCron, "error", err)
		}
	}

	// Daily summary right after the quota rollover.
	c.AddFunc("5 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		st, err := engine.AdminStats(ctx)
		if err != nil {
			log.Error("Daily stats failed", "error", err)
			return
		}
		log.Info("Daily stats", "users", st.Users, "answers", st.Answers, "active_unlimited", st.ActiveUnlimited)
	})

	c.Start()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down")
		<-c.Stop().Done()
		if api != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = api.Shutdown(ctx)
		}
		b.Stop()
	}()

	log.Info("Bot started", "policy", policy.Name(), "timezone", cfg.Timezone, "sessions", cfg.SessionBackend)
	b.Start()
}
