package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cart-view/internal/aws"
	"github.com/imrishuroy/go-cart-view/internal/config"
	"github.com/imrishuroy/go-cart-view/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "cart-worker", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	p := NewProcessor(aws.NewMetricsRecorder(clients.CloudWatch, cfg.MetricsNamespace), log.Named("cart.worker"))

	// RUN_LOCAL=true processes one event from LOCAL_SQS_BODY and exits.
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"event_id":"local-1","cart_id":"default","lines":1,"units":2,"subtotal":8}`
		}
		resp, err := p.Handle(context.Background(), events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatal("local handler failed", zap.Error(err), zap.Int("failures", len(resp.BatchItemFailures)))
		}
		return
	}

	lambda.Start(p.Handle)
}
