package server

import (
	"net/http"
	"os"
	"path/filepath"

	"aria/internal/catalog"
	"aria/pkg/models"
)

// handleIndex serves a small service banner at the root and a JSON 404
// for every unknown path that falls through the mux.
func (ms *MusicServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		ms.respondError(w, r, http.StatusNotFound, "Endpoint not found", nil)
		return
	}

	ms.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "Aria music server is running",
		"endpoints": map[string]string{
			"/api/songs":            "GET - List all songs",
			"/api/music/{filename}": "GET - Stream audio file",
			"/api/upload":           "POST - Upload new song",
		},
	})
}

// handleGetSongs scans the library and returns the sorted catalog. Each
// request recomputes the listing; nothing is cached between calls.
func (ms *MusicServer) handleGetSongs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ms.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	songs, err := ms.scanner.Scan()
	if err != nil {
		ms.logger.WithError(err).Error("Library scan failed")
		ms.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Error scanning music library",
			"songs":   []models.Song{},
		})
		return
	}

	ms.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(songs),
		"songs":   songs,
	})
}

// handleStreamSong serves the raw bytes of one library file. The
// requested name is reduced to its basename before it touches the
// filesystem, so traversal segments never escape the storage directory.
func (ms *MusicServer) handleStreamSong(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ms.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	filename := sanitizeFilename(r.URL.Path[len("/api/music/"):])
	if filename == "" {
		ms.respondError(w, r, http.StatusBadRequest, "Filename is required", nil)
		return
	}

	if !ms.scanner.IsAllowed(filename) {
		ms.respondError(w, r, http.StatusBadRequest, "File type not allowed", nil)
		return
	}

	filePath := filepath.Join(ms.scanner.Dir(), filename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		ms.respondError(w, r, http.StatusNotFound, "File not found", err)
		return
	}

	if err := ms.streamFile(w, r, filePath, catalog.ContentType(filename)); err != nil {
		ms.logger.WithError(err).WithField("filename", filename).Error("Error streaming file")
	}
}
