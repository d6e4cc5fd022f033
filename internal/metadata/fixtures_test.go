package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Synthesized tag structures used across the extractor tests. Real
// files are large and binary; these builders produce the smallest
// containers that exercise the parsers.

type id3Frame struct {
	id   string
	data []byte
}

func textFrame(id, text string) id3Frame {
	return id3Frame{id: id, data: append([]byte{encLatin1}, []byte(text)...)}
}

func apicFrame(mime, desc string, image []byte) id3Frame {
	var data bytes.Buffer
	data.WriteByte(encLatin1)
	data.WriteString(mime)
	data.WriteByte(0)
	data.WriteByte(3) // front cover
	data.WriteString(desc)
	data.WriteByte(0)
	data.Write(image)
	return id3Frame{id: "APIC", data: data.Bytes()}
}

func encodeSynchsafe(n uint32) []byte {
	return []byte{
		byte(n >> 21 & 0x7F),
		byte(n >> 14 & 0x7F),
		byte(n >> 7 & 0x7F),
		byte(n & 0x7F),
	}
}

// buildID3v2 assembles a complete tag region for the given major
// version (3 or 4).
func buildID3v2(version byte, frames ...id3Frame) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		body.WriteString(f.id)
		if version == 4 {
			body.Write(encodeSynchsafe(uint32(len(f.data))))
		} else {
			var size [4]byte
			binary.BigEndian.PutUint32(size[:], uint32(len(f.data)))
			body.Write(size[:])
		}
		body.Write([]byte{0, 0}) // frame flags
		body.Write(f.data)
	}

	var tag bytes.Buffer
	tag.WriteString("ID3")
	tag.Write([]byte{version, 0, 0})
	tag.Write(encodeSynchsafe(uint32(body.Len())))
	tag.Write(body.Bytes())
	return tag.Bytes()
}

// oggPage wraps packets into a single Ogg page with correct lacing.
func oggPage(headerType byte, granule uint64, seq uint32, packets ...[]byte) []byte {
	var lacing []byte
	var data bytes.Buffer
	for _, pkt := range packets {
		remaining := len(pkt)
		for remaining >= 255 {
			lacing = append(lacing, 255)
			remaining -= 255
		}
		lacing = append(lacing, byte(remaining))
		data.Write(pkt)
	}

	var page bytes.Buffer
	page.WriteString("OggS")
	page.WriteByte(0)          // version
	page.WriteByte(headerType) // header type
	var granuleBuf [8]byte
	binary.LittleEndian.PutUint64(granuleBuf[:], granule)
	page.Write(granuleBuf[:])
	var serial, seqBuf, crc [4]byte
	binary.LittleEndian.PutUint32(serial[:], 0xCAFE)
	binary.LittleEndian.PutUint32(seqBuf[:], seq)
	page.Write(serial[:])
	page.Write(seqBuf[:])
	page.Write(crc[:]) // checksum unchecked by the parser
	page.WriteByte(byte(len(lacing)))
	page.Write(lacing)
	page.Write(data.Bytes())
	return page.Bytes()
}

func vorbisIdentPacket(sampleRate uint32) []byte {
	pkt := make([]byte, 30)
	pkt[0] = 0x01
	copy(pkt[1:7], "vorbis")
	// version stays 0
	pkt[11] = 2 // channels
	binary.LittleEndian.PutUint32(pkt[12:16], sampleRate)
	pkt[29] = 0x01 // framing bit
	return pkt
}

func vorbisCommentPacket(pairs ...[2]string) []byte {
	var pkt bytes.Buffer
	pkt.WriteByte(0x03)
	pkt.WriteString("vorbis")

	vendor := "aria-test"
	writeLE32 := func(n uint32) {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], n)
		pkt.Write(buf[:])
	}
	writeLE32(uint32(len(vendor)))
	pkt.WriteString(vendor)
	writeLE32(uint32(len(pairs)))
	for _, kv := range pairs {
		comment := kv[0] + "=" + kv[1]
		writeLE32(uint32(len(comment)))
		pkt.WriteString(comment)
	}
	pkt.WriteByte(0x01) // framing bit
	return pkt.Bytes()
}

// buildPictureBlock produces the binary picture structure that rides
// base64-encoded inside a metadata_block_picture comment.
func buildPictureBlock(mime, desc string, image []byte) []byte {
	var block bytes.Buffer
	writeBE32 := func(n uint32) {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], n)
		block.Write(buf[:])
	}
	writeBE32(3) // front cover
	writeBE32(uint32(len(mime)))
	block.WriteString(mime)
	writeBE32(uint32(len(desc)))
	block.WriteString(desc)
	writeBE32(600) // width
	writeBE32(600) // height
	writeBE32(24)  // color depth
	writeBE32(0)   // indexed colors
	writeBE32(uint32(len(image)))
	block.Write(image)
	return block.Bytes()
}

// buildOggVorbis lays out identification and comment packets on pages
// and a final audio page carrying the closing granule position.
func buildOggVorbis(sampleRate uint32, lastGranule uint64, comments ...[2]string) []byte {
	var stream bytes.Buffer
	stream.Write(oggPage(0x02, 0, 0, vorbisIdentPacket(sampleRate)))
	stream.Write(oggPage(0x00, 0, 1, vorbisCommentPacket(comments...)))
	stream.Write(oggPage(0x04, lastGranule, 2, []byte{0x00}))
	return stream.Bytes()
}

// buildWAV produces a PCM WAVE container with optional chunks between
// the format and data chunks.
func buildWAV(sampleRate uint32, bitsPerSample, channels uint16, dataLen int, extraChunks ...[]byte) []byte {
	var fmtChunk bytes.Buffer
	var u16 [2]byte
	var u32 [4]byte
	binary.LittleEndian.PutUint16(u16[:], 1) // PCM
	fmtChunk.Write(u16[:])
	binary.LittleEndian.PutUint16(u16[:], channels)
	fmtChunk.Write(u16[:])
	binary.LittleEndian.PutUint32(u32[:], sampleRate)
	fmtChunk.Write(u32[:])
	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8
	binary.LittleEndian.PutUint32(u32[:], byteRate)
	fmtChunk.Write(u32[:])
	binary.LittleEndian.PutUint16(u16[:], channels*bitsPerSample/8)
	fmtChunk.Write(u16[:])
	binary.LittleEndian.PutUint16(u16[:], bitsPerSample)
	fmtChunk.Write(u16[:])

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("fmt ")
	binary.LittleEndian.PutUint32(u32[:], uint32(fmtChunk.Len()))
	body.Write(u32[:])
	body.Write(fmtChunk.Bytes())
	for _, chunk := range extraChunks {
		body.Write(chunk)
	}
	body.WriteString("data")
	binary.LittleEndian.PutUint32(u32[:], uint32(dataLen))
	body.Write(u32[:])
	body.Write(make([]byte, dataLen))

	var file bytes.Buffer
	file.WriteString("RIFF")
	binary.LittleEndian.PutUint32(u32[:], uint32(body.Len()))
	file.Write(u32[:])
	file.Write(body.Bytes())
	return file.Bytes()
}

// infoListChunk builds a LIST/INFO chunk with the given entries.
func infoListChunk(entries ...[2]string) []byte {
	var list bytes.Buffer
	list.WriteString("INFO")
	var u32 [4]byte
	for _, kv := range entries {
		value := kv[1] + "\x00"
		if len(value)%2 == 1 {
			value += "\x00"
		}
		list.WriteString(kv[0])
		binary.LittleEndian.PutUint32(u32[:], uint32(len(value)))
		list.Write(u32[:])
		list.WriteString(value)
	}

	var chunk bytes.Buffer
	chunk.WriteString("LIST")
	binary.LittleEndian.PutUint32(u32[:], uint32(list.Len()))
	chunk.Write(u32[:])
	chunk.Write(list.Bytes())
	return chunk.Bytes()
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}
