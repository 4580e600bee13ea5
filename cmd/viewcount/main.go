package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/videos/repository"
	"github.com/vrsio/video-backend/internal/viewcount"
	clientKafka "github.com/vrsio/video-backend/pkg/db/kafka"
	"github.com/vrsio/video-backend/pkg/db/postgres"
	clientRedis "github.com/vrsio/video-backend/pkg/db/redis"
	"github.com/vrsio/video-backend/pkg/logger"
)

func main() {
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	defer psqlDB.Close()
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())

	redisClient, err := clientRedis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	defer redisClient.Close()
	appLogger.Infof("redis connected")

	kafkaReader := clientKafka.NewKafkaReader(cfg)
	defer kafkaReader.Close()
	appLogger.Infof("kafka connected, brokers: %v", cfg.Kafka.Brokers)

	videoRepo := repository.NewVideoRepo(psqlDB)
	redisRepo := repository.NewVideoRedisRepo(redisClient)

	acc := viewcount.NewAccumulator()
	consumer := viewcount.NewConsumer(appLogger, redisRepo, acc, kafkaReader)
	flusher := viewcount.NewFlusher(appLogger, videoRepo, acc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx); err != nil {
			appLogger.Errorf("view count consumer stopped: %v", err)
		}
	}()

	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		flusher.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down view count service")
	cancel()
	<-consumerDone
	<-flusherDone
}
