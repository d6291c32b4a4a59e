package pak

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// Helpers for constructing synthetic archives in memory. Derived
// fields (class flag, name hash, XOR check) are filled in the way the
// packing tool would, using the decompressed size.

type testFile struct {
	name             string
	payload          []byte // raw stored bytes
	decompressedSize uint32 // 0 means same as len(payload)
}

func (f testFile) sizes() (stored, decompressed uint32) {
	stored = uint32(len(f.payload))
	decompressed = f.decompressedSize
	if decompressed == 0 {
		decompressed = stored
	}
	return
}

func w32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

// putHeader appends a valid 0x28-byte header declaring the given
// file-table sizes.
func putHeader(b *bytes.Buffer, sizeCompressed, sizeDecompressed uint32) {
	b.WriteString(Magic)
	w32(b, FileVersion)
	w32(b, 0x11223344) // file crc32, never verified
	b.WriteByte(1)
	w32(b, 946684800) // 2000-01-01
	b.Write([]byte{0, 0, 0})
	w32(b, sizeDecompressed)
	w32(b, sizeCompressed)
	w32(b, TableNameHash^sizeCompressed)
	w32(b, 0xaaaaaaaa) // table crc32 plaintext
	w32(b, 0xbbbbbbbb) // table crc32 ciphertext
}

// buildTable lays the files out contiguously, assigning sequential
// relative offsets.
func buildTable(files []testFile) []byte {
	var b bytes.Buffer
	w32(&b, uint32(len(files)))
	offset := uint32(0)
	for _, f := range files {
		stored, decompressed := f.sizes()
		w32(&b, uint32(len(f.name)))
		b.WriteString(f.name)
		w32(&b, decompressed)
		w32(&b, stored)
		w32(&b, offset)
		w32(&b, classFlagFor(f.name, decompressed))
		w32(&b, nameHashFor(f.name, decompressed))
		w32(&b, 0xcafe0000)
		w32(&b, 0xcafe0001)
		offset += stored
	}
	return b.Bytes()
}

// buildArchive assembles a complete plaintext archive with an
// uncompressed file-table.
func buildArchive(files []testFile) []byte {
	table := buildTable(files)
	var b bytes.Buffer
	putHeader(&b, uint32(len(table)), uint32(len(table)))
	b.Write(table)
	for _, f := range files {
		b.Write(f.payload)
	}
	return b.Bytes()
}

func TestDjb2a(t *testing.T) {
	if got := Djb2a(nil); got != 5381 {
		t.Errorf("Djb2a(nil) = %d, want 5381", got)
	}
	if got := Djb2a([]byte("header")); got != TableNameHash {
		t.Errorf("Djb2a(\"header\") = %#08x, want %#08x", got, uint32(TableNameHash))
	}
}
