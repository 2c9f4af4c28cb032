package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cart-view/internal/aws"
	"github.com/imrishuroy/go-cart-view/internal/cart"
	"github.com/imrishuroy/go-cart-view/internal/cartstore"
	"github.com/imrishuroy/go-cart-view/internal/catalog"
	"github.com/imrishuroy/go-cart-view/internal/config"
	"github.com/imrishuroy/go-cart-view/internal/handlers"
	"github.com/imrishuroy/go-cart-view/internal/idempotency"
	"github.com/imrishuroy/go-cart-view/internal/logger"
	"github.com/imrishuroy/go-cart-view/internal/memstore"
	"github.com/imrishuroy/go-cart-view/internal/redisstore"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(cfg.Logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterCartRoutes(r, cfg)

	return r
}

// buildRepository picks the persistence collaborator for cfg.Backend.
// clients may be nil unless the backend is dynamodb.
func buildRepository(cfg config.Config, clients *aws.AWSClients) (cart.Repository, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		if clients == nil {
			return nil, fmt.Errorf("dynamodb backend needs aws clients")
		}
		return cartstore.NewStore(clients.DynamoDB, cfg.LinesTable, cfg.CartID), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return redisstore.New(rdb, cfg.CartID), nil
	default:
		return memstore.New("mock"), nil
	}
}

func needsAWS(cfg config.Config) bool {
	return cfg.Backend == config.BackendDynamoDB || cfg.EventsQueueURL != ""
}

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "cart-api", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var clients *aws.AWSClients
	if needsAWS(cfg) {
		clients, err = aws.NewAWSClients(ctx)
		if err != nil {
			log.Fatal("failed to init aws clients", zap.Error(err))
		}
	}

	repo, err := buildRepository(cfg, clients)
	if err != nil {
		log.Fatal("failed to build cart repository", zap.Error(err))
	}

	opts := []cart.Option{cart.WithLogger(log.Named("cart.controller"))}
	if cfg.SerializeLineOps {
		opts = append(opts, cart.WithLineSerialization())
	}
	if cfg.EventsQueueURL != "" {
		publisher := aws.NewPublisher(clients.SQS, cfg.EventsQueueURL)
		opts = append(opts, cart.WithListener(cartEventListener(publisher, cfg.CartID, log.Named("cart.events"))))
	}
	ctrl := cart.NewController(repo, opts...)

	if _, err := ctrl.Load(ctx); err != nil {
		log.Warn("initial cart load failed", zap.Error(err))
	}

	hcfg := handlers.HandlerConfig{
		Controller: ctrl,
		Catalog:    catalog.Default(),
		Logger:     log.Named("cart.handler"),
	}
	if cfg.Backend == config.BackendDynamoDB && cfg.IdempotencyTable != "" {
		hcfg.Guard = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}

	r := setupRouter(hcfg)

	// RUN_LOCAL=true serves plain HTTP for development.
	if cfg.RunLocal {
		log.Info("running local server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("backend", cfg.Backend),
		)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
