package metadata

import (
	"testing"
)

func TestExtractFromFileTitleFallback(t *testing.T) {
	extractor := NewExtractor()

	testCases := []struct {
		name     string
		filename string
		data     []byte
		expected string
	}{
		{"untagged mp3", "road trip.mp3", append([]byte{0xFF, 0xFB}, make([]byte, 256)...), "road trip"},
		{"unknown container", "notes.mp3", []byte("just some text pretending"), "notes"},
		{"corrupt tag", "broken.mp3", append(buildID3v2(3, textFrame("TIT2", "Lost"))[:14], 0xFF), "broken"},
		{"empty file", "silence.wav", nil, "silence"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestFile(t, tc.filename, tc.data)
			song := extractor.ExtractFromFile(path)

			if song.Title != tc.expected {
				t.Errorf("title: expected %q, got %q", tc.expected, song.Title)
			}
			if song.Filename != tc.filename {
				t.Errorf("filename: expected %q, got %q", tc.filename, song.Filename)
			}
		})
	}
}

func TestExtractFromFileTaggedMP3(t *testing.T) {
	extractor := NewExtractor()
	tag := buildID3v2(4,
		textFrame("TIT2", "Morning Light"),
		textFrame("TPE1", "Dawn Chorus"),
	)
	path := writeTestFile(t, "morning.mp3", tag)

	song := extractor.ExtractFromFile(path)

	if song.Title != "Morning Light" {
		t.Errorf("title: expected Morning Light, got %q", song.Title)
	}
	if song.Artist == nil || *song.Artist != "Dawn Chorus" {
		t.Errorf("artist: expected Dawn Chorus, got %v", song.Artist)
	}
	if song.Album != nil {
		t.Errorf("album: expected absent, got %v", song.Album)
	}
}

func TestExtractFromFileIsTotal(t *testing.T) {
	extractor := NewExtractor()

	// A path that does not exist still produces a usable record.
	song := extractor.ExtractFromFile("/nonexistent/dir/phantom.ogg")
	if song.Filename != "phantom.ogg" {
		t.Errorf("filename: expected phantom.ogg, got %q", song.Filename)
	}
	if song.Title != "phantom" {
		t.Errorf("title: expected phantom fallback, got %q", song.Title)
	}
	if song.Artist != nil || song.Album != nil || song.Duration != nil || song.Cover != nil {
		t.Errorf("expected all optional fields absent, got %+v", song)
	}
}
