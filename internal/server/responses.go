package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// respondJSON writes payload as JSON with the given status code.
func (ms *MusicServer) respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ms.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// respondError sends the standard failure envelope and logs the cause.
func (ms *MusicServer) respondError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := ms.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
	})
	if err != nil {
		logEntry = logEntry.WithError(err)
	}
	if statusCode >= 500 {
		logEntry.Error(message)
	} else {
		logEntry.Warn(message)
	}

	ms.respondJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
