package main

import (
	"context"
	"net/http"

	"mchat/backend/internal/api/handler"
	"mchat/backend/internal/auth"
	"mchat/backend/internal/chathub"
	"mchat/backend/internal/config"
	"mchat/backend/internal/identity"
	"mchat/backend/internal/models"
	"mchat/backend/internal/storage"
	"mchat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("Failed to connect Redis: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		logger.Fatal("Failed to run migrations: %v", err)
	}

	logger.Info("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	logger.Info("Starting MChat backend...")

	cfg := config.Load()
	db, rdb := setupDependencies(cfg)

	store := storage.NewService(db, rdb)
	if err := store.EnsureSystemUser(context.Background()); err != nil {
		logger.Fatal("Failed to ensure System user: %v", err)
	}

	authService := auth.NewService(store, cfg.JWT)
	resolver := identity.NewResolver(authService, store)

	hub := chathub.NewHub(store, resolver)
	hub.EnableFabric(context.Background())

	r := gin.Default()
	h := handler.NewHandler(hub, authService, resolver)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/ws/:room", h.ServeWebSocket)

	server := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Fatal("Server stopped: %v", server.ListenAndServe())
}
