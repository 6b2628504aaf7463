package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/config"
	"github.com/unclebandit/autoreachpro-backend/internal/db"
	"github.com/unclebandit/autoreachpro-backend/internal/logger"
	"github.com/unclebandit/autoreachpro-backend/internal/queue"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

// The worker consumes campaign.completed events from RabbitMQ and advances
// the lead lifecycle. It is only needed when the server publishes to AMQP.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	if cfg.AMQPURL == "" {
		zl.Fatal("AMQP_URL must be set for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	q, err := queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPQueue, zl)
	if err != nil {
		zl.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer q.Close()

	worker := service.NewContactWorker(&repository.LeadRepository{DB: conn}, zl)
	if err := worker.Subscribe(q); err != nil {
		zl.Fatal("failed to subscribe", zap.Error(err))
	}

	zl.Info("worker running, waiting for messages", zap.String("queue", cfg.AMQPQueue))
	<-ctx.Done()
	zl.Info("worker stopping")
}
