package pak

import (
	"fmt"
	"io"
	"os"
)

// Region is a byte range within the archive.
type Region struct {
	Offset int64
	Size   int64
}

// End returns the offset one past the last byte of the region.
func (r Region) End() int64 {
	return r.Offset + r.Size
}

// Archive is the decoded model of one PAK file. It keeps a reference to
// the byte source it was parsed from; payloads are read lazily through
// it and are never copied up front.
type Archive struct {
	Header    Header
	Encrypted bool

	// Entries is the decoded file-table, in on-disk order. Nil when the
	// archive is encrypted.
	Entries []Entry

	// Table is the raw file-table region (possibly compressed, possibly
	// ciphertext). Data is everything after it. Both are meaningful for
	// encrypted archives too, where they delimit the opaque blobs.
	Table Region
	Data  Region

	src  io.ReaderAt
	size int64
}

// Parse decodes a PAK archive from a random-access byte source of the
// given total size.
//
// An ErrInvalidMagic failure aborts immediately with a nil archive. A
// file-table truncation returns both the partial archive (valid header,
// prefix of entries) and ErrTruncatedEntry. Encrypted archives return
// with Encrypted set and no entries; their two opaque regions can be
// read with ReadRegion.
func Parse(r io.ReaderAt, size int64) (*Archive, error) {
	h, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		Header: h,
		Table:  Region{Offset: HeaderSize, Size: int64(h.TableSizeCompressed)},
		src:    r,
		size:   size,
	}
	a.Data = Region{Offset: h.FileDataStart(), Size: size - h.FileDataStart()}
	if a.Data.Size < 0 {
		a.Data.Size = 0
	}

	encrypted, err := IsEncrypted(r)
	if err != nil {
		return a, err
	}
	if encrypted {
		a.Encrypted = true
		return a, nil
	}

	if a.Table.End() > size {
		return a, fmt.Errorf("file-table region ends at %#x, archive is %#x bytes: %w",
			a.Table.End(), size, ErrTruncatedEntry)
	}
	raw, err := a.ReadRegion(a.Table)
	if err != nil {
		return a, fmt.Errorf("read file-table: %w", err)
	}
	table, err := DecodeTable(h, raw)
	if err != nil {
		return a, err
	}

	a.Entries, err = ParseFileTable(table)
	if err != nil {
		return a, err
	}
	return a, nil
}

// Size returns the total size of the archive in bytes.
func (a *Archive) Size() int64 {
	return a.size
}

// PayloadRegion returns the byte range of e's raw payload within the
// archive. The range is derived, not validated; ReadPayload checks it
// against the archive bounds.
func (a *Archive) PayloadRegion(e Entry) Region {
	return Region{
		Offset: a.Data.Offset + int64(e.Offset),
		Size:   int64(e.SizeCompressed),
	}
}

// ReadPayload reads the raw payload bytes of e. The bytes are exactly
// as stored: still LZ4-compressed if e.Compressed() and still encrypted
// if the archive is. Fails with ErrTruncatedPayload if the entry's
// range extends past the end of the archive.
//
// Safe to call concurrently as long as the underlying source supports
// concurrent ReadAt, which os.File does.
func (a *Archive) ReadPayload(e Entry) ([]byte, error) {
	reg := a.PayloadRegion(e)
	if reg.End() > a.size {
		return nil, fmt.Errorf("payload %q at %#x+%#x: %w", e.Name, reg.Offset, reg.Size, ErrTruncatedPayload)
	}
	buf, err := a.ReadRegion(reg)
	if err != nil {
		return nil, fmt.Errorf("payload %q: %w", e.Name, err)
	}
	return buf, nil
}

// ReadRegion reads an arbitrary byte range from the archive, e.g. the
// opaque Table and Data regions of an encrypted file. Reading past the
// end of the source yields io.ErrUnexpectedEOF.
func (a *Archive) ReadRegion(reg Region) ([]byte, error) {
	buf := make([]byte, reg.Size)
	if _, err := io.ReadFull(io.NewSectionReader(a.src, reg.Offset, reg.Size), buf); err != nil {
		return nil, fmt.Errorf("read region %#x+%#x: %w", reg.Offset, reg.Size, err)
	}
	return buf, nil
}

// ReadCloser is an Archive parsed from a file, which must be closed
// after the last payload read.
type ReadCloser struct {
	f *os.File
	Archive
}

// Close closes the underlying file.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}

// Open parses the PAK file at name. Like Parse, a truncated file-table
// returns both a usable partial result and ErrTruncatedEntry; the file
// is only closed again when no archive can be returned at all.
func Open(name string) (*ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	a, err := Parse(f, st.Size())
	if a == nil {
		f.Close()
		return nil, err
	}

	rc := &ReadCloser{f: f, Archive: *a}
	return rc, err
}
