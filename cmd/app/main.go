package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Edunabha/internal/config"
	"Edunabha/pkg/log"
	"Edunabha/pkg/redis"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	logger := log.NewLogger()
	if envErr != nil {
		if os.IsNotExist(envErr) {
			logger.Info("No .env file found, using process environment")
		} else {
			logger.WithField("error", envErr.Error()).Warn("Failed to load .env file")
		}
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithGenerator(),
		config.WithTranscriber(),
		config.WithTTS(),
		config.WithUtils(),
		config.WithBcryptUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Shutdown finished with errors")
	}
}
