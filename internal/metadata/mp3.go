package metadata

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/tcolgate/mp3"
)

// extractMP3 reads ID3v2 text frames, the first APIC picture and the
// stream duration from an MP3 container. A corrupt tag region degrades
// to a fully absent record; a file with no tag at all still gets its
// duration measured.
func extractMP3(path string) Tags {
	var t Tags

	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	region, err := readID3v2Region(f)
	if err != nil {
		return Tags{}
	}
	if region != nil {
		if err := parseID3v2(region, &t); err != nil {
			return Tags{}
		}
	}

	if secs, err := mp3StreamDuration(path); err == nil {
		t.Duration = floatPtr(secs)
	}

	return t
}

// mp3StreamDuration sums per-frame durations by decoding frame headers.
// Falls back to an average-bitrate estimate only when not a single frame
// decodes; a partial decode keeps whatever was accumulated.
func mp3StreamDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)
	var total time.Duration
	var skipped int
	frames := 0
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if frames == 0 {
				return estimateFromFileSize(path, 192000) // assume 192 kbps
			}
			break
		}
		total += fr.Duration()
		frames++
	}
	if frames == 0 {
		return 0, errors.New("no mp3 frames decoded")
	}
	return total.Seconds(), nil
}

// estimateFromFileSize is a last-resort duration estimate from the file
// size at a fixed bitrate.
func estimateFromFileSize(path string, bitrate int64) (float64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if bitrate <= 0 {
		return 0, errors.New("invalid bitrate")
	}
	return float64(st.Size()*8) / float64(bitrate), nil
}
