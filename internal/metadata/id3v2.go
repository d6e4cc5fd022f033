package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

// ID3v2 text encoding bytes as defined by the spec.
const (
	encLatin1  = 0x00
	encUTF16   = 0x01 // with BOM
	encUTF16BE = 0x02
	encUTF8    = 0x03
)

// id3v2Header is the fixed 10-byte header at the start of a tag region.
type id3v2Header struct {
	Version byte // major version (3 or 4)
	Flags   byte
	Size    uint32 // tag size excluding the header, synchsafe
}

// readID3v2Region reads the complete ID3v2 tag region (header included)
// from the start of r. Returns nil with no error when the file simply
// carries no tag.
func readID3v2Region(r io.ReaderAt) ([]byte, error) {
	head := make([]byte, 10)
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, nil
	}
	if string(head[0:3]) != "ID3" {
		return nil, nil
	}

	size := decodeSynchsafe(head[6:10])
	if size == 0 {
		return nil, fmt.Errorf("id3v2: empty tag")
	}

	region := make([]byte, 10+int(size))
	if _, err := r.ReadAt(region, 0); err != nil {
		return nil, fmt.Errorf("id3v2: truncated tag: %w", err)
	}
	return region, nil
}

// parseID3v2 walks the frames of a complete tag region and fills t with
// the first TIT2/TPE1/TALB text values and the image bytes of the first
// APIC frame. Later APIC frames are ignored.
func parseID3v2(region []byte, t *Tags) error {
	if len(region) < 10 || string(region[0:3]) != "ID3" {
		return fmt.Errorf("id3v2: missing header")
	}

	header := id3v2Header{
		Version: region[3],
		Flags:   region[5],
		Size:    decodeSynchsafe(region[6:10]),
	}
	if header.Version != 3 && header.Version != 4 {
		return fmt.Errorf("id3v2: unsupported version 2.%d", header.Version)
	}

	offset := 10
	if header.Flags&0x40 != 0 {
		// Extended header: skip it. v2.4 stores a synchsafe size that
		// includes its own four size bytes, v2.3 excludes them.
		if len(region) < offset+4 {
			return fmt.Errorf("id3v2: truncated extended header")
		}
		if header.Version == 4 {
			offset += int(decodeSynchsafe(region[offset : offset+4]))
		} else {
			offset += int(binary.BigEndian.Uint32(region[offset:offset+4])) + 4
		}
	}

	tagEnd := 10 + int(header.Size)
	if tagEnd > len(region) {
		tagEnd = len(region)
	}

	for offset+10 <= tagEnd {
		if region[offset] == 0 {
			break // padding
		}

		frameID := string(region[offset : offset+4])
		var frameSize uint32
		if header.Version == 4 {
			frameSize = decodeSynchsafe(region[offset+4 : offset+8])
		} else {
			frameSize = binary.BigEndian.Uint32(region[offset+4 : offset+8])
		}

		dataStart := offset + 10
		dataEnd := dataStart + int(frameSize)
		if frameSize == 0 || dataEnd > tagEnd {
			return fmt.Errorf("id3v2: corrupt frame %q", frameID)
		}
		data := region[dataStart:dataEnd]

		switch frameID {
		case "TIT2", "TPE1", "TALB":
			text, err := decodeTextFrame(data)
			if err != nil {
				return fmt.Errorf("id3v2: frame %s: %w", frameID, err)
			}
			if text != "" {
				switch frameID {
				case "TIT2":
					if t.Title == nil {
						t.Title = strPtr(text)
					}
				case "TPE1":
					if t.Artist == nil {
						t.Artist = strPtr(text)
					}
				case "TALB":
					if t.Album == nil {
						t.Album = strPtr(text)
					}
				}
			}
		case "APIC":
			if t.Cover == nil {
				image, err := parseAPICFrame(data)
				if err != nil {
					return fmt.Errorf("id3v2: frame APIC: %w", err)
				}
				t.Cover = image
			}
		}

		offset = dataEnd
	}

	return nil
}

// decodeSynchsafe decodes a 7-bits-per-byte synchsafe integer.
func decodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// decodeTextFrame decodes a text frame body (encoding byte followed by
// text) and returns the first value if the frame carries several.
func decodeTextFrame(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("empty text frame")
	}
	text, err := decodeID3String(data[1:], data[0])
	if err != nil {
		return "", err
	}
	// v2.4 packs multiple values NUL-separated; the first one wins.
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text), nil
}

// decodeID3String converts raw frame bytes to a Go string according to
// the frame's declared text encoding.
func decodeID3String(b []byte, encoding byte) (string, error) {
	switch encoding {
	case encLatin1:
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		return strings.TrimRight(string(runes), "\x00"), nil
	case encUTF16:
		if len(b) >= 2 {
			if b[0] == 0xFF && b[1] == 0xFE {
				return decodeUTF16(b[2:], binary.LittleEndian), nil
			}
			if b[0] == 0xFE && b[1] == 0xFF {
				return decodeUTF16(b[2:], binary.BigEndian), nil
			}
		}
		// Missing BOM; little-endian is the common default in the wild.
		return decodeUTF16(b, binary.LittleEndian), nil
	case encUTF16BE:
		return decodeUTF16(b, binary.BigEndian), nil
	case encUTF8:
		return strings.TrimRight(string(b), "\x00"), nil
	default:
		return "", fmt.Errorf("unknown text encoding 0x%02x", encoding)
	}
}

func decodeUTF16(b []byte, order binary.ByteOrder) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, order.Uint16(b[i:i+2]))
	}
	return strings.TrimRight(string(utf16.Decode(u)), "\x00")
}

// parseAPICFrame extracts the image payload from an attached-picture
// frame. Layout: encoding byte, NUL-terminated MIME type, picture type
// byte, NUL-terminated description, then raw image bytes to the end of
// the frame.
func parseAPICFrame(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("frame too short")
	}

	encoding := data[0]
	pos := 1

	// MIME type is always ISO-8859-1 regardless of the encoding byte.
	mimeEnd := bytes.IndexByte(data[pos:], 0)
	if mimeEnd < 0 {
		return nil, fmt.Errorf("unterminated MIME type")
	}
	pos += mimeEnd + 1

	if pos >= len(data) {
		return nil, fmt.Errorf("truncated after MIME type")
	}
	pos++ // picture type byte

	// Description terminator width depends on the text encoding.
	switch encoding {
	case encUTF16, encUTF16BE:
		descEnd := -1
		for i := pos; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				descEnd = i
				break
			}
		}
		if descEnd < 0 {
			return nil, fmt.Errorf("unterminated description")
		}
		pos = descEnd + 2
	case encLatin1, encUTF8:
		descEnd := bytes.IndexByte(data[pos:], 0)
		if descEnd < 0 {
			return nil, fmt.Errorf("unterminated description")
		}
		pos += descEnd + 1
	default:
		return nil, fmt.Errorf("unknown text encoding 0x%02x", encoding)
	}

	if pos >= len(data) {
		return nil, fmt.Errorf("no image data")
	}
	return data[pos:], nil
}
