package server

import "testing"

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "song.mp3", "song.mp3"},
		{"name with spaces", "my song.mp3", "my song.mp3"},
		{"url-encoded spaces", "my%20song.mp3", "my song.mp3"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"encoded traversal", "..%2F..%2Fetc%2Fpasswd", "passwd"},
		{"windows separators", "..\\..\\boot.ini", "boot.ini"},
		{"absolute path", "/etc/shadow", "shadow"},
		{"empty", "", ""},
		{"dot", ".", ""},
		{"dot dot", "..", ""},
		{"bare slash", "/", ""},
		{"trailing slash", "dir/", "dir"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.input); got != tc.expected {
				t.Errorf("sanitizeFilename(%q): expected %q, got %q", tc.input, tc.expected, got)
			}
		})
	}
}
