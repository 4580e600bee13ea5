package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/transcoder"
	"github.com/vrsio/video-backend/internal/videos/repository"
	"github.com/vrsio/video-backend/internal/worker"
	"github.com/vrsio/video-backend/pkg/db/aws"
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

	awsClient, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	videoRepo := repository.NewVideoRepo(psqlDB)
	redisRepo := repository.NewVideoRedisRepo(redisClient)
	awsRepo := repository.NewAwsRepository(awsClient, cfg)
	ffmpeg := transcoder.NewFFmpegTranscoder(cfg, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transcodeWorker := worker.NewTranscodeWorker(cfg, appLogger, videoRepo, redisRepo, ffmpeg)
	transcodeWorker.Start(ctx)

	uploadWorker := worker.NewUploadWorker(cfg, appLogger, videoRepo, redisRepo, awsRepo)
	uploadDone := make(chan struct{})
	go func() {
		defer close(uploadDone)
		// Run only errors during startup (group creation); a pipeline
		// without its upload consumer silently strands transcoded files.
		if err := uploadWorker.Run(ctx); err != nil {
			appLogger.Fatalf("upload worker failed: %s", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down pipeline")
	cancel()
	transcodeWorker.Wait()
	<-uploadDone
}
