package main

import (
	"os"
	"os/signal"
	"syscall"

	"aria/internal/config"
	"aria/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	// Ensure the music directory exists
	if err := os.MkdirAll(cfg.Library.Path, 0755); err != nil {
		logger.WithError(err).WithField("library_path", cfg.Library.Path).Fatal("Could not create music directory")
	}

	// Create and configure the music server
	musicServer, err := server.NewMusicServer(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Error creating music server")
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := musicServer.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for shutdown signal
	<-c

	logger.Info("Received shutdown signal")
	musicServer.Shutdown()
}
