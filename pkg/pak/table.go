package pak

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Entry is one file-table record. The payload bytes themselves are not
// held here; use Archive.ReadPayload or Archive.PayloadRegion.
type Entry struct {
	// Name is the entry's path within the archive. The on-disk field is
	// length-prefixed raw bytes with no terminator; known files use
	// forward-slash ASCII paths.
	Name string

	SizeDecompressed uint32
	SizeCompressed   uint32
	// Offset is relative to the start of the data region
	// (Header.FileDataStart), not to the start of the file.
	Offset uint32

	// ClassFlag and NameHash are values the packing tool derives from
	// the name and sizes (see CheckDerived). They are read, not
	// recomputed.
	ClassFlag uint32
	NameHash  uint32

	CRC32Plaintext  uint32
	CRC32Ciphertext uint32
}

// Compressed reports whether the payload is LZ4-compressed. The format
// has no flag for this; the packing tool compares the two sizes.
func (e Entry) Compressed() bool {
	return e.SizeCompressed != e.SizeDecompressed
}

// DecodeTable turns the raw file-table region into walkable table
// bytes, applying LZ4 block decompression when the header says the
// table is compressed.
func DecodeTable(h Header, raw []byte) ([]byte, error) {
	if !h.TableCompressed() {
		return raw, nil
	}
	dst := make([]byte, h.TableSizeDecompressed)
	n, err := lz4.UncompressBlock(raw, dst)
	if err != nil {
		return nil, fmt.Errorf("decompress file-table: %w", err)
	}
	if n != len(dst) {
		return nil, fmt.Errorf("decompress file-table: got %d bytes, header says %d", n, len(dst))
	}
	return dst, nil
}

// ParseFileTable decodes the file-table: a u32 entry count followed by
// that many variable-size entries, packed with no padding. The input
// must be the full (already decompressed) table bytes.
//
// If the table ends before the declared count is reached, the entries
// decoded so far are returned together with ErrTruncatedEntry, so
// callers can still inspect the valid prefix.
func ParseFileTable(table []byte) ([]Entry, error) {
	if len(table) < 4 {
		return nil, fmt.Errorf("%w: no room for entry count", ErrTruncatedEntry)
	}
	count := binary.LittleEndian.Uint32(table)

	// Every entry occupies at least 4+entryFixedSize bytes, which bounds
	// how many can really fit; don't let a hostile count drive the
	// allocation.
	capHint := (len(table) - 4) / (4 + entryFixedSize)
	if uint64(capHint) > uint64(count) {
		capHint = int(count)
	}
	entries := make([]Entry, 0, capHint)

	cursor := 4
	for i := uint32(0); i < count; i++ {
		if len(table)-cursor < 4 {
			return entries, fmt.Errorf("entry %d at offset %#x: %w", i, cursor, ErrTruncatedEntry)
		}
		nameLen := binary.LittleEndian.Uint32(table[cursor:])
		cursor += 4

		if int64(len(table)-cursor) < int64(nameLen)+entryFixedSize {
			return entries, fmt.Errorf("entry %d at offset %#x: %w", i, cursor-4, ErrTruncatedEntry)
		}
		name := string(table[cursor : cursor+int(nameLen)])
		cursor += int(nameLen)

		f := table[cursor : cursor+entryFixedSize]
		cursor += entryFixedSize

		entries = append(entries, Entry{
			Name:             name,
			SizeDecompressed: binary.LittleEndian.Uint32(f[0:]),
			SizeCompressed:   binary.LittleEndian.Uint32(f[4:]),
			Offset:           binary.LittleEndian.Uint32(f[8:]),
			ClassFlag:        binary.LittleEndian.Uint32(f[12:]),
			NameHash:         binary.LittleEndian.Uint32(f[16:]),
			CRC32Plaintext:   binary.LittleEndian.Uint32(f[20:]),
			CRC32Ciphertext:  binary.LittleEndian.Uint32(f[24:]),
		})
	}

	return entries, nil
}

// ClassFlagCandidates returns the two possible expected values of
// ClassFlag: 2 for large or .alf entries, else 0. The packing tool
// left it open whether the compressed or decompressed size is the one
// compared against the threshold, so both readings are returned.
func (e Entry) ClassFlagCandidates() (fromCompressed, fromDecompressed uint32) {
	fromCompressed = classFlagFor(e.Name, e.SizeCompressed)
	fromDecompressed = classFlagFor(e.Name, e.SizeDecompressed)
	return
}

func classFlagFor(name string, size uint32) uint32 {
	if size >= largeAssetThreshold || strings.HasSuffix(name, ".alf") {
		return 2
	}
	return 0
}

// NameHashCandidates returns the two possible expected values of
// NameHash: 0 for an empty entry, otherwise the djb2a hash of the name
// XORed with the size. As with ClassFlagCandidates, both size readings
// are returned.
func (e Entry) NameHashCandidates() (fromCompressed, fromDecompressed uint32) {
	fromCompressed = nameHashFor(e.Name, e.SizeCompressed)
	fromDecompressed = nameHashFor(e.Name, e.SizeDecompressed)
	return
}

func nameHashFor(name string, size uint32) uint32 {
	if size == 0 {
		return 0
	}
	return Djb2a([]byte(name)) ^ size
}
