package metadata

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Cap on reassembled header packets. Comment packets carry embedded
	// art, so they can legitimately reach megabytes.
	maxOggPacketSize = 16 * 1024 * 1024

	oggTailWindow = 64 * 1024
)

// extractOggVorbis reads title/artist/album from the Vorbis comment
// header, cover art from a METADATA_BLOCK_PICTURE comment, and the
// stream duration from the final page's granule position.
func extractOggVorbis(path string) Tags {
	var t Tags

	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	packets, err := readOggPackets(f, 2)
	if err != nil || len(packets) < 2 {
		return Tags{}
	}

	sampleRate, err := parseVorbisIdentification(packets[0])
	if err != nil {
		return Tags{}
	}

	if err := parseVorbisComments(packets[1], &t); err != nil {
		return Tags{}
	}

	if st, err := f.Stat(); err == nil && sampleRate > 0 {
		if granule, ok := lastGranulePosition(f, st.Size()); ok && granule > 0 {
			t.Duration = floatPtr(float64(granule) / float64(sampleRate))
		}
	}

	return t
}

// readOggPackets walks Ogg pages from the start of the stream and
// reassembles logical packets from the lacing values, following packets
// across page boundaries, until max packets are complete.
func readOggPackets(r io.Reader, max int) ([][]byte, error) {
	var packets [][]byte
	var current []byte

	for len(packets) < max {
		header := make([]byte, 27)
		if _, err := io.ReadFull(r, header); err != nil {
			return packets, err
		}
		if string(header[0:4]) != "OggS" {
			return packets, fmt.Errorf("ogg: bad page capture")
		}

		segCount := int(header[26])
		lacing := make([]byte, segCount)
		if _, err := io.ReadFull(r, lacing); err != nil {
			return packets, err
		}

		for _, l := range lacing {
			seg := make([]byte, int(l))
			if _, err := io.ReadFull(r, seg); err != nil {
				return packets, err
			}
			current = append(current, seg...)
			if len(current) > maxOggPacketSize {
				return packets, fmt.Errorf("ogg: packet exceeds %d bytes", maxOggPacketSize)
			}
			// A lacing value below 255 terminates the packet.
			if l < 255 {
				packets = append(packets, current)
				current = nil
				if len(packets) == max {
					return packets, nil
				}
			}
		}
	}

	return packets, nil
}

// parseVorbisIdentification validates the identification header (packet
// type 0x01) and returns the sample rate.
func parseVorbisIdentification(pkt []byte) (uint32, error) {
	if len(pkt) < 30 {
		return 0, fmt.Errorf("vorbis: identification header too short")
	}
	if pkt[0] != 0x01 || string(pkt[1:7]) != "vorbis" {
		return 0, fmt.Errorf("vorbis: not an identification header")
	}
	return binary.LittleEndian.Uint32(pkt[12:16]), nil
}

// parseVorbisComments walks the comment header (packet type 0x03). Keys
// compare case-insensitively and the first value of a repeated key wins.
// An unparsable METADATA_BLOCK_PICTURE leaves the cover absent without
// failing the rest of the header.
func parseVorbisComments(pkt []byte, t *Tags) error {
	if len(pkt) < 7 || pkt[0] != 0x03 || string(pkt[1:7]) != "vorbis" {
		return fmt.Errorf("vorbis: not a comment header")
	}

	offset := 7
	vendorLen, offset, err := readLE32(pkt, offset)
	if err != nil {
		return err
	}
	offset += int(vendorLen)

	count, offset, err := readLE32(pkt, offset)
	if err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		var length uint32
		length, offset, err = readLE32(pkt, offset)
		if err != nil || offset+int(length) > len(pkt) {
			return fmt.Errorf("vorbis: truncated comment %d", i)
		}
		comment := string(pkt[offset : offset+int(length)])
		offset += int(length)

		eq := strings.IndexByte(comment, '=')
		if eq < 0 {
			continue
		}
		key, value := comment[:eq], comment[eq+1:]

		switch {
		case strings.EqualFold(key, "title"):
			if t.Title == nil && value != "" {
				t.Title = strPtr(value)
			}
		case strings.EqualFold(key, "artist"):
			if t.Artist == nil && value != "" {
				t.Artist = strPtr(value)
			}
		case strings.EqualFold(key, "album"):
			if t.Album == nil && value != "" {
				t.Album = strPtr(value)
			}
		case strings.EqualFold(key, "metadata_block_picture"):
			if t.Cover == nil {
				if image, err := parsePictureBlock(value); err == nil {
					t.Cover = image
				}
			}
		}
	}

	return nil
}

func readLE32(b []byte, offset int) (uint32, int, error) {
	if offset+4 > len(b) {
		return 0, offset, fmt.Errorf("vorbis: truncated length field")
	}
	return binary.LittleEndian.Uint32(b[offset : offset+4]), offset + 4, nil
}

// parsePictureBlock decodes a base64 METADATA_BLOCK_PICTURE value and
// extracts the raw image bytes from the picture block:
//
//	4 bytes  picture type (BE)
//	4 bytes  MIME length, then MIME string
//	4 bytes  description length, then description
//	4x4 bytes  width, height, color depth, indexed colors
//	4 bytes  image length, then image bytes
func parsePictureBlock(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("picture block: %w", err)
	}
	if len(data) < 32 {
		return nil, fmt.Errorf("picture block too small: %d bytes", len(data))
	}

	offset := 4 // skip picture type

	mimeLen := binary.BigEndian.Uint32(data[offset:])
	offset += 4
	if offset+int(mimeLen)+4 > len(data) {
		return nil, fmt.Errorf("picture block: MIME length exceeds data")
	}
	offset += int(mimeLen)

	descLen := binary.BigEndian.Uint32(data[offset:])
	offset += 4
	if offset+int(descLen)+20 > len(data) {
		return nil, fmt.Errorf("picture block: description length exceeds data")
	}
	offset += int(descLen)

	offset += 16 // width, height, color depth, indexed colors

	imageLen := binary.BigEndian.Uint32(data[offset:])
	offset += 4
	if offset+int(imageLen) > len(data) {
		return nil, fmt.Errorf("picture block: image length exceeds data")
	}

	return data[offset : offset+int(imageLen)], nil
}

// lastGranulePosition scans the tail of the stream for the final Ogg
// page and returns its granule position (total samples for Vorbis).
func lastGranulePosition(r io.ReaderAt, size int64) (uint64, bool) {
	window := int64(oggTailWindow)
	if window > size {
		window = size
	}
	buf := make([]byte, window)
	if _, err := r.ReadAt(buf, size-window); err != nil {
		return 0, false
	}

	idx := bytes.LastIndex(buf, []byte("OggS"))
	for idx >= 0 {
		if idx+14 <= len(buf) {
			return binary.LittleEndian.Uint64(buf[idx+6 : idx+14]), true
		}
		idx = bytes.LastIndex(buf[:idx], []byte("OggS"))
	}
	return 0, false
}
