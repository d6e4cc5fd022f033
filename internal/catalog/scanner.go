package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aria/internal/metadata"
	"aria/pkg/models"
)

// Scanner builds catalog listings from a storage directory. The catalog
// is recomputed on every call; nothing is cached between scans.
type Scanner struct {
	dir       string
	allowed   map[string]bool
	extractor *metadata.Extractor
}

// NewScanner creates a scanner over dir accepting the given extensions
// (lowercase, dot included, e.g. ".mp3").
func NewScanner(dir string, allowedExtensions []string, extractor *metadata.Extractor) *Scanner {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &Scanner{
		dir:       dir,
		allowed:   allowed,
		extractor: extractor,
	}
}

// Scan lists the storage directory and returns a Song per allowed
// regular file, sorted case-insensitively by title. Individual files
// never fail a scan; the only reportable error is a directory that
// cannot be listed, in which case the returned slice is empty.
func (s *Scanner) Scan() ([]models.Song, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return []models.Song{}, fmt.Errorf("failed to list music directory: %w", err)
	}

	songs := make([]models.Song, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !s.IsAllowed(entry.Name()) {
			continue
		}
		songs = append(songs, s.extractor.ExtractFromFile(filepath.Join(s.dir, entry.Name())))
	}

	// Stable keeps directory enumeration order for equal keys.
	sort.SliceStable(songs, func(i, j int) bool {
		return strings.ToLower(songs[i].SortTitle()) < strings.ToLower(songs[j].SortTitle())
	})

	return songs, nil
}

// Count reports how many allowed audio files the directory currently
// holds, without touching their metadata. Used by the health endpoint.
func (s *Scanner) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.Type().IsRegular() && s.IsAllowed(entry.Name()) {
			count++
		}
	}
	return count, nil
}

// IsAllowed checks the extension allowlist, case-insensitively.
func (s *Scanner) IsAllowed(filename string) bool {
	return s.allowed[strings.ToLower(filepath.Ext(filename))]
}

// Dir returns the storage directory the scanner reads.
func (s *Scanner) Dir() string {
	return s.dir
}

// ContentType returns the MIME type served for an audio file, keyed by
// extension.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
