package metadata

import (
	"path/filepath"
	"strings"
	"time"

	"aria/internal/format"
	"aria/pkg/models"

	"github.com/sirupsen/logrus"
)

// Extractor assembles canonical Song records from audio files. It sniffs
// the container, dispatches to the matching format parser and applies
// the filename fallback. Extraction is a pure transform of file bytes,
// so a single Extractor is safe to share across goroutines.
type Extractor struct {
	logger *logrus.Logger
}

// NewExtractor creates a new metadata extractor.
func NewExtractor() *Extractor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Extractor{logger: logger}
}

// ExtractFromFile builds a Song record for the file at path. It is a
// total function: tag corruption, truncation or an unreadable file all
// degrade to absent optional fields, never to an error. The title falls
// back to the filename stem when no tag supplies one.
func (e *Extractor) ExtractFromFile(path string) models.Song {
	startTime := time.Now()
	filename := filepath.Base(path)

	kind := format.Detect(path)

	var tags Tags
	switch kind {
	case format.KindMP3:
		tags = extractMP3(path)
	case format.KindOggVorbis:
		tags = extractOggVorbis(path)
	case format.KindWave:
		tags = extractWave(path)
	case format.KindUnknown:
		// No recognizable container; the fallback below still applies.
	}

	song := models.Song{
		Filename: filename,
		Artist:   tags.Artist,
		Album:    tags.Album,
		Duration: tags.Duration,
		Cover:    tags.Cover,
	}
	if tags.Title != nil && *tags.Title != "" {
		song.Title = *tags.Title
	} else {
		song.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	e.logger.WithFields(logrus.Fields{
		"filename":       filename,
		"container":      kind.String(),
		"title":          song.Title,
		"hasCover":       song.Cover != nil,
		"processingTime": time.Since(startTime),
	}).Debug("Extracted metadata")

	return song
}
