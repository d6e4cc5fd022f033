package server

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// startFileWatcher initializes fsnotify monitoring of the storage
// directory. The catalog itself is recomputed per request, so the
// watcher only provides change observability in the logs.
func (ms *MusicServer) startFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ms.watcher = watcher

	go ms.watchFiles()

	if err := ms.watcher.Add(ms.scanner.Dir()); err != nil {
		return err
	}

	ms.logger.WithField("library_path", ms.scanner.Dir()).Info("File watcher started")
	return nil
}

// watchFiles selects on watcher channels and dispatches events.
func (ms *MusicServer) watchFiles() {
	defer ms.watcher.Close()

	for {
		select {
		case event, ok := <-ms.watcher.Events:
			if !ok {
				return
			}
			ms.handleFileEvent(event)

		case err, ok := <-ms.watcher.Errors:
			if !ok {
				return
			}
			ms.logger.WithError(err).Error("File watcher error")
		}
	}
}

// handleFileEvent filters out temp/hidden files and logs library changes.
func (ms *MusicServer) handleFileEvent(event fsnotify.Event) {
	fileName := filepath.Base(event.Name)
	if strings.HasPrefix(fileName, ".") || strings.HasSuffix(fileName, ".tmp") {
		return
	}
	if !ms.scanner.IsAllowed(fileName) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		go func(path string) {
			time.Sleep(500 * time.Millisecond) // let the file finish writing
			song := ms.extractor.ExtractFromFile(path)
			ms.logger.WithFields(logrus.Fields{
				"filename": song.Filename,
				"title":    song.Title,
			}).Info("New audio file in library")
		}(event.Name)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		ms.logger.WithField("filename", fileName).Info("Audio file removed from library")
	}
}

// stopFileWatcher closes the watcher (idempotent).
func (ms *MusicServer) stopFileWatcher() {
	if ms.watcher != nil {
		ms.watcher.Close()
	}
}
