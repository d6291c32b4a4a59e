package pak

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Header is the fixed 0x28-byte record at the start of a PAK file.
// All fields are little-endian on disk. CRC32, Flag, and TableSizeXor
// are surfaced as-is and never validated; see CheckDerived.
type Header struct {
	Version   uint32 // always 103 in known files
	CRC32     uint32 // JAMCRC32 of the file starting at offset 0x14
	Flag      uint8  // always 1 in known files, purpose unknown
	Timestamp uint32 // POSIX creation time, followed by 3 pad bytes

	TableSizeDecompressed uint32
	TableSizeCompressed   uint32
	// TableSizeXor is expected to equal one of the two table sizes XORed
	// with TableNameHash. The packing tool itself is unsure which size
	// is canonical, so both candidates are exposed via XorCandidates.
	TableSizeXor         uint32
	TableCRC32Plaintext  uint32
	TableCRC32Ciphertext uint32
}

// ParseHeader reads and validates the archive header at offset 0.
// It fails with ErrInvalidMagic unless the first 8 bytes are exactly
// the "KCAP" signature followed by version 103.
func ParseHeader(r io.ReaderAt) (Header, error) {
	var buf [HeaderSize]byte
	if n, err := r.ReadAt(buf[:], 0); n < len(buf) {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	if string(buf[0:4]) != Magic || binary.LittleEndian.Uint32(buf[4:8]) != FileVersion {
		return Header{}, fmt.Errorf("%w: % x", ErrInvalidMagic, buf[0:8])
	}

	return Header{
		Version:   binary.LittleEndian.Uint32(buf[0x04:]),
		CRC32:     binary.LittleEndian.Uint32(buf[0x08:]),
		Flag:      buf[0x0c],
		Timestamp: binary.LittleEndian.Uint32(buf[0x0d:]),
		// 3 pad bytes at 0x11
		TableSizeDecompressed: binary.LittleEndian.Uint32(buf[0x14:]),
		TableSizeCompressed:   binary.LittleEndian.Uint32(buf[0x18:]),
		TableSizeXor:          binary.LittleEndian.Uint32(buf[0x1c:]),
		TableCRC32Plaintext:   binary.LittleEndian.Uint32(buf[0x20:]),
		TableCRC32Ciphertext:  binary.LittleEndian.Uint32(buf[0x24:]),
	}, nil
}

// FileDataStart returns the absolute offset of the payload data region:
// the header plus the (compressed) file-table.
func (h Header) FileDataStart() int64 {
	return HeaderSize + int64(h.TableSizeCompressed)
}

// TableCompressed reports whether the file-table region holds an LZ4
// block rather than raw table bytes.
func (h Header) TableCompressed() bool {
	return h.TableSizeCompressed != h.TableSizeDecompressed
}

// XorCandidates returns the two possible expected values of
// TableSizeXor, derived from the compressed and decompressed table
// sizes respectively.
func (h Header) XorCandidates() (fromCompressed, fromDecompressed uint32) {
	return TableNameHash ^ h.TableSizeCompressed, TableNameHash ^ h.TableSizeDecompressed
}

// encryptedCountThreshold is the largest value the u32 at offset 0x28
// can hold and still be treated as a plausible plaintext entry count.
const encryptedCountThreshold = 0xfffff

// IsEncrypted reports whether the file-table appears to be encrypted,
// by reading the u32 at offset 0x28 as if it were a plaintext entry
// count. Ciphertext decoded that way is almost certain to exceed any
// real file count. This is a heuristic, not a proof: a plaintext table
// that is LZ4-compressed can misclassify the same way.
func IsEncrypted(r io.ReaderAt) (bool, error) {
	var buf [4]byte
	if n, err := r.ReadAt(buf[:], HeaderSize); n < len(buf) {
		return false, fmt.Errorf("read entry count: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]) > encryptedCountThreshold, nil
}
