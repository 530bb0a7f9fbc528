package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"room-chat-service/internal/auth"
	"room-chat-service/internal/config"
	"room-chat-service/internal/db"
	"room-chat-service/internal/handlers"
	"room-chat-service/internal/middleware"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/session"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

const serviceName = "room-chat-service"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	mongoDB, err := db.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to document store: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to account db: %v", err)
	}
	defer pgDB.Close()

	publisher := observability.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)

	roomRepo := repositories.NewRoomRepo(mongoDB)
	userRepo := repositories.NewUserRepo(pgDB)

	tokens := auth.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	audit := telemetry.NewAuditEmitter("room_activity", serviceName, cfg.Environment)

	hub := ws.NewHub()
	sessions := session.NewRegistry()
	coordinator := ws.NewCoordinator(hub, sessions, roomRepo, audit)

	roomHandler := handlers.NewRoomHandler(roomRepo, hub, audit)
	authHandler := handlers.NewAuthHandler(userRepo, tokens)

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)

	authMiddleware := middleware.AuthMiddleware(tokens)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)

	router.GET("/room/chat-history/:roomCode", authMiddleware, roomHandler.ChatHistory)
	router.GET("/room/:code", authMiddleware, roomHandler.GetRoom)
	router.POST("/room/:code", authMiddleware, roomHandler.CreateRoom)
	router.PATCH("/room/:code/editMsg/:msgId", authMiddleware, roomHandler.EditMessage)
	router.DELETE("/room/:code/deleteMsg/:msgId", authMiddleware, roomHandler.DeleteMessage)

	router.GET("/ws", coordinator.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
