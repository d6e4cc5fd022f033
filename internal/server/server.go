package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/metadata"
	"aria/internal/tunnel"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// MusicServer serves the audio catalog over HTTP: listing with extracted
// metadata, raw streaming, and uploads into the storage directory.
type MusicServer struct {
	config     *config.Config
	extractor  *metadata.Extractor
	scanner    *catalog.Scanner
	watcher    *fsnotify.Watcher
	tunnel     *tunnel.Service
	logger     *logrus.Logger
	httpServer *http.Server
}

// NewMusicServer creates a new music server instance
func NewMusicServer(cfg *config.Config) (*MusicServer, error) {
	logger := newLogger(&cfg.Logging)

	extractor := metadata.NewExtractor()
	scanner := catalog.NewScanner(cfg.Library.Path, cfg.Library.AllowedExtensions, extractor)

	tunnelSvc, err := tunnel.NewService(&cfg.Tunnel)
	if err != nil {
		logger.WithError(err).Warn("Tunnel service not available")
		tunnelSvc = nil
	}

	return &MusicServer{
		config:    cfg,
		extractor: extractor,
		scanner:   scanner,
		tunnel:    tunnelSvc,
		logger:    logger,
	}, nil
}

// newLogger builds a logrus logger from the logging configuration.
func newLogger(cfg *config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}

	return logger
}

// Handler returns the full HTTP handler with middleware applied.
// Exposed so tests can drive the server through httptest.
func (ms *MusicServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", ms.handleIndex)
	mux.HandleFunc("/health", ms.handleHealthCheck)
	mux.HandleFunc("/api/songs", ms.handleGetSongs)
	mux.HandleFunc("/api/music/", ms.handleStreamSong)
	mux.HandleFunc("/api/upload", ms.handleUploadSong)

	var handler http.Handler = mux
	handler = ms.requestLoggingMiddleware(handler)
	handler = ms.corsMiddleware(handler)
	handler = ms.panicRecoveryMiddleware(handler)
	return handler
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (ms *MusicServer) Start() error {
	if ms.config.Library.WatchForChanges {
		if err := ms.startFileWatcher(); err != nil {
			ms.logger.WithError(err).Warn("Could not start file watcher")
		}
	}

	localAddress := fmt.Sprintf("http://%s", ms.config.GetAddress())
	ms.logger.WithFields(logrus.Fields{
		"address":      localAddress,
		"library_path": ms.config.Library.Path,
	}).Info("Aria server starting")

	if count, err := ms.scanner.Count(); err == nil {
		ms.logger.WithField("songs", count).Info("Music library ready")
	}

	if ms.tunnel != nil {
		if err := ms.tunnel.Start(context.Background(), localAddress); err != nil {
			ms.logger.WithError(err).Warn("Could not start tunnel")
		}
	}

	ms.httpServer = &http.Server{
		Addr:        ms.config.GetAddress(),
		Handler:     ms.Handler(),
		ReadTimeout: time.Duration(ms.config.Server.ReadTimeout) * time.Second,
	}

	if err := ms.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the music server
func (ms *MusicServer) Shutdown() {
	ms.logger.Info("Shutting down music server...")

	ms.stopFileWatcher()

	if ms.tunnel != nil {
		if err := ms.tunnel.Stop(); err != nil {
			ms.logger.WithError(err).Warn("Error stopping tunnel")
		}
	}

	if ms.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ms.httpServer.Shutdown(ctx); err != nil {
			ms.logger.WithError(err).Error("HTTP server shutdown error")
		}
	}

	ms.logger.Info("Music server shutdown complete")
}
