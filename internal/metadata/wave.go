package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-audio/wav"
)

// extractWave reads what little a RIFF/WAVE container can carry: title
// and artist from an embedded ID3 chunk or a LIST/INFO chunk, plus the
// duration from the format chunk arithmetic. WAVE carries no cover art
// in this design.
func extractWave(path string) Tags {
	var t Tags

	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	if err := parseRIFFChunks(f, &t); err != nil {
		t = Tags{}
	}

	if secs, err := waveDuration(path); err == nil {
		t.Duration = floatPtr(secs)
	}

	return t
}

// parseRIFFChunks walks the top-level RIFF chunks looking for metadata.
// Chunk data is word-aligned, so odd sizes carry a pad byte.
func parseRIFFChunks(f *os.File, t *Tags) error {
	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return fmt.Errorf("riff: not a WAVE container")
	}

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "id3 ", "ID3 ":
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, data); err != nil {
				return fmt.Errorf("riff: truncated id3 chunk: %w", err)
			}
			if err := parseID3v2(data, t); err != nil {
				return err
			}
		case "LIST":
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, data); err != nil {
				return fmt.Errorf("riff: truncated LIST chunk: %w", err)
			}
			parseINFOList(data, t)
		default:
			if _, err := f.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return err
			}
		}

		if chunkSize%2 == 1 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return err
			}
		}
	}
}

// parseINFOList reads INAM (title) and IART (artist) entries from a
// LIST chunk of type INFO.
func parseINFOList(data []byte, t *Tags) {
	if len(data) < 4 || string(data[0:4]) != "INFO" {
		return
	}

	offset := 4
	for offset+8 <= len(data) {
		entryID := string(data[offset : offset+4])
		entrySize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if entrySize < 0 || offset+entrySize > len(data) {
			return
		}
		value := strings.TrimRight(string(data[offset:offset+entrySize]), "\x00")
		value = strings.TrimSpace(value)

		switch entryID {
		case "INAM":
			if t.Title == nil && value != "" {
				t.Title = strPtr(value)
			}
		case "IART":
			if t.Artist == nil && value != "" {
				t.Artist = strPtr(value)
			}
		}

		offset += entrySize
		if entrySize%2 == 1 {
			offset++
		}
	}
}

// waveDuration approximates the stream length from the format chunk and
// the file size; counting exact sample frames would mean decoding the
// whole data chunk.
func waveDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("invalid wav file")
	}
	if dec.SampleRate == 0 || dec.BitDepth == 0 || dec.NumChans == 0 {
		return 0, fmt.Errorf("invalid wav header")
	}

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	headerSize := int64(44)
	pcmBytes := st.Size() - headerSize
	if pcmBytes < 0 {
		pcmBytes = 0
	}
	bytesPerSampleFrame := int64(dec.BitDepth/8) * int64(dec.NumChans)
	if bytesPerSampleFrame <= 0 {
		return 0, fmt.Errorf("invalid sample frame size")
	}
	sampleFrames := pcmBytes / bytesPerSampleFrame
	return float64(sampleFrames) / float64(dec.SampleRate), nil
}
