package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Memory threshold for multipart parsing; larger bodies spill to disk.
const multipartMemoryLimit = 32 << 20

// handleUploadSong accepts a multipart upload into the storage
// directory and responds with the uploaded file's extracted metadata.
func (ms *MusicServer) handleUploadSong(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ms.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	uploadID := uuid.NewString()

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		ms.respondError(w, r, http.StatusBadRequest, "Failed to parse upload form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ms.respondError(w, r, http.StatusBadRequest, "No file provided", err)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		ms.respondError(w, r, http.StatusBadRequest, "No file selected", nil)
		return
	}

	if !ms.scanner.IsAllowed(header.Filename) {
		ms.respondError(w, r, http.StatusBadRequest,
			"File type not allowed. Allowed: "+strings.Join(ms.config.Library.AllowedExtensions, ", "), nil)
		return
	}

	// Reduce to the basename so a crafted filename cannot climb out of
	// the storage directory.
	filename := sanitizeFilename(header.Filename)
	if filename == "" {
		ms.respondError(w, r, http.StatusBadRequest, "Invalid filename", nil)
		return
	}
	destPath := filepath.Join(ms.scanner.Dir(), filename)

	// Known race: this stat and the create below are not atomic with
	// respect to a concurrent upload of the same name.
	if _, err := os.Stat(destPath); err == nil {
		ms.respondError(w, r, http.StatusConflict, "File already exists", nil)
		return
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		ms.respondError(w, r, http.StatusInternalServerError, "Failed to create destination file", err)
		return
	}
	defer destFile.Close()

	written, err := io.Copy(destFile, file)
	if err != nil {
		os.Remove(destPath) // clean up the partial file
		ms.respondError(w, r, http.StatusInternalServerError, "Failed to save file", err)
		return
	}

	song := ms.extractor.ExtractFromFile(destPath)

	ms.logger.WithFields(logrus.Fields{
		"upload_id": uploadID,
		"filename":  filename,
		"bytes":     written,
		"title":     song.Title,
	}).Info("File uploaded")

	ms.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "File uploaded successfully",
		"song":    song,
	})
}
