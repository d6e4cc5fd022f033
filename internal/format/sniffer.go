package format

import (
	"io"
	"os"
)

// Kind identifies the container format of an audio file. The set is
// closed: the assembler switches over it exhaustively.
type Kind int

const (
	KindUnknown Kind = iota
	KindMP3
	KindOggVorbis
	KindWave
)

// String returns a human-readable name for logging.
func (k Kind) String() string {
	switch k {
	case KindMP3:
		return "mp3"
	case KindOggVorbis:
		return "ogg-vorbis"
	case KindWave:
		return "wave"
	default:
		return "unknown"
	}
}

// Detect opens the file and identifies its container by magic bytes.
// The filename extension plays no part here; it is only an allowlist
// hint upstream. Unreadable or truncated files come back as KindUnknown,
// never as an error.
func Detect(path string) Kind {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown
	}
	defer f.Close()
	return DetectReader(f)
}

// DetectReader identifies the container from the first bytes of r.
func DetectReader(r io.ReaderAt) Kind {
	magic := make([]byte, 12)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return KindUnknown
	}

	// ID3v2 tag prefix marks an MP3 container
	if string(magic[0:3]) == "ID3" {
		return KindMP3
	}

	// Bare MP3 frame sync (11 set bits) for untagged files
	if magic[0] == 0xFF && magic[1]&0xE0 == 0xE0 {
		return KindMP3
	}

	// Ogg page capture pattern
	if string(magic[0:4]) == "OggS" {
		return KindOggVorbis
	}

	// RIFF....WAVE
	if string(magic[0:4]) == "RIFF" && string(magic[8:12]) == "WAVE" {
		return KindWave
	}

	return KindUnknown
}
