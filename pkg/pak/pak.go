// Package pak reads the PAK archive container used by the Lingcod
// emulator's asset pipeline.
//
// A PAK file starts with a fixed 0x28-byte header, followed by a
// file-table region of TableSizeCompressed bytes, followed by the
// concatenated entry payloads. Both the file-table and the payloads are
// normally encrypted; this package detects that case and exposes the
// encrypted regions opaquely. For unencrypted archives (the debug
// output of the packing tool) it decodes the full file-table, including
// LZ4 block decompression of the table itself when the header's two
// table sizes differ.
//
// The package is strictly read-only: it never decrypts, never
// decompresses payloads, and never verifies checksums. Checksum and
// hash-derived fields are surfaced as data, with optional diagnostic
// helpers for callers that want to cross-check them.
package pak

import "errors"

// Constants for the archive format
const (
	// Magic is the signature at the start of every PAK file.
	Magic = "KCAP"
	// FileVersion is the header version value found in all known PAK files.
	FileVersion = 103
	// HeaderSize is the fixed size of the archive header in bytes.
	HeaderSize = 0x28

	// TableNameHash is Djb2a("header"), the name hash of the file-table
	// blob. The header's XOR self-check field is one of the two table
	// sizes XORed with this value.
	TableNameHash = 0x5e40989a
)

// entryFixedSize is the size of the seven fixed uint32 fields that
// follow an entry's name bytes.
const entryFixedSize = 28

// largeAssetThreshold is the decompressed size at or above which the
// packing tool sets an entry's class flag to 2.
const largeAssetThreshold = 0x00a00000

var (
	// ErrInvalidMagic indicates the first 8 bytes are not the expected
	// "KCAP" signature plus version 103. Nothing past the header is
	// parsed when this is returned.
	ErrInvalidMagic = errors.New("invalid PAK magic/version")

	// ErrTruncatedEntry indicates the file-table ended before a declared
	// entry could be fully read. Entries decoded before the truncation
	// point are still returned.
	ErrTruncatedEntry = errors.New("truncated file-table entry")

	// ErrTruncatedPayload indicates an entry's payload range extends past
	// the end of the archive. Only that payload read fails; the rest of
	// the model stays valid.
	ErrTruncatedPayload = errors.New("payload extends past end of archive")
)

// Djb2a computes the djb2a hash of data. The PAK format derives its
// per-entry name-hash fields and the header's XOR self-check constant
// from this hash.
func Djb2a(data []byte) uint32 {
	h := uint32(5381)
	for _, b := range data {
		h = h*33 ^ uint32(b)
	}
	return h
}
