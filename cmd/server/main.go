package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/admin"
	"github.com/playmatatu/poolsim/internal/api"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/database"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/migrations"
	"github.com/playmatatu/poolsim/internal/redis"
	"github.com/playmatatu/poolsim/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	tuning, err := config.LoadTable(cfg.TableConfigPath)
	if err != nil {
		log.Fatalf("Failed to load table config: %v", err)
	}

	// Postgres is optional: without it results are not kept and admin
	// accounts fall back to ADMIN_TOKEN_HASH.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, ""); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("[DB] Connected")

		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[CONFIG] Runtime config not applied: %v", err)
		}
	} else {
		log.Println("[DB] DATABASE_URL not set; game results will not be stored")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[REDIS] Connected")
	} else {
		log.Println("[REDIS] REDIS_URL not set; snapshots and events stay in memory")
	}

	store, err := achievements.NewStore(cfg.AchievementStore, cfg.AchievementFile, db, rdb)
	if err != nil {
		log.Fatalf("Failed to open achievement store: %v", err)
	}

	manager := game.NewGameManager(db, rdb, tuning, cfg.MaxSessions)

	hub := ws.NewHub()
	go hub.Run(ctx)
	if rdb != nil {
		ws.StartGameEventSubscriber(ctx, rdb, hub)
	}

	game.StartIdleWorker(ctx, manager,
		time.Duration(cfg.SessionIdleMinutes)*time.Minute,
		time.Duration(cfg.IdleWorkerPollInterval)*time.Second)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, api.Deps{
		DB:           db,
		Redis:        rdb,
		Config:       cfg,
		Manager:      manager,
		Achievements: store,
		WS: &ws.Server{
			Hub:          hub,
			Manager:      manager,
			Achievements: store,
			JWTSecret:    cfg.JWTSecret,
			TickRate:     cfg.TickRate,
		},
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting poolsim server on port %s (tick=%dHz, tables=%d)", cfg.Port, cfg.TickRate, cfg.MaxSessions)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	for _, s := range manager.Sessions() {
		manager.EndSession(s.ID)
	}
}
