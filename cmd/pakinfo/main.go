// Command pakinfo inspects PAK archive files: it prints the header,
// reports whether the file-table is encrypted, and lists the contained
// entries when it isn't.
//
// With -dump, the raw payload bytes of every entry are written to a
// folder. Payloads are copied exactly as stored in the archive, still
// compressed where the entry says so; this is an inspection aid, not an
// unpacker.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RoadrunnerWMC/packling/pkg/pak"
	"github.com/RoadrunnerWMC/packling/pkg/progress"
)

func main() {
	verbose := flag.Bool("v", false, "print all entry fields and consistency warnings")
	dumpDir := flag.String("dump", "", "write raw entry payloads into this folder")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *verbose, *dumpDir); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pakinfo [-v] [-dump folder] file.pak")
	flag.PrintDefaults()
}

func run(input string, verbose bool, dumpDir string) error {
	a, err := pak.Open(input)
	if err != nil {
		if a == nil {
			return err
		}
		// A truncated file-table still yields a usable prefix.
		fmt.Println("Warning:", err)
	}
	defer a.Close()

	printHeader(a, verbose)

	if a.Encrypted {
		fmt.Println("\nfile-table is encrypted; entries are not readable")
		return nil
	}

	fmt.Printf("\n%d entries:\n", len(a.Entries))
	for _, e := range a.Entries {
		printEntry(e, verbose)
	}

	if dumpDir != "" {
		return dumpPayloads(a, dumpDir)
	}
	return nil
}

func printHeader(a *pak.ReadCloser, verbose bool) {
	h := a.Header
	created := time.Unix(int64(h.Timestamp), 0).UTC()

	fmt.Printf("version:        %d\n", h.Version)
	fmt.Printf("created:        %s (%d)\n", created.Format("2006-01-02T15:04:05"), h.Timestamp)
	fmt.Printf("file crc32:     %08x\n", h.CRC32)
	fmt.Printf("table size:     %d compressed, %d decompressed\n",
		h.TableSizeCompressed, h.TableSizeDecompressed)
	if h.TableCompressed() {
		fmt.Println("table storage:  lz4 block")
	}
	fmt.Printf("table crc32:    %08x plaintext, %08x ciphertext\n",
		h.TableCRC32Plaintext, h.TableCRC32Ciphertext)
	if verbose {
		c, d := h.XorCandidates()
		fmt.Printf("table xor:      %08x (candidates %08x / %08x)\n", h.TableSizeXor, c, d)
		fmt.Printf("data region:    %#x .. %#x\n", a.Data.Offset, a.Data.End())
		for _, w := range h.CheckDerived() {
			fmt.Println("warning:", w)
		}
	}
}

func printEntry(e pak.Entry, verbose bool) {
	stored := ""
	if e.Compressed() {
		stored = " (compressed)"
	}
	fmt.Printf("  %s  %d bytes%s\n", e.Name, e.SizeDecompressed, stored)
	if verbose {
		fmt.Printf("    offset %#x  stored %d  class %d  hash %08x  crc32 %08x/%08x\n",
			e.Offset, e.SizeCompressed, e.ClassFlag, e.NameHash,
			e.CRC32Plaintext, e.CRC32Ciphertext)
		for _, w := range e.CheckDerived() {
			fmt.Println("    warning:", w)
		}
	}
}

// dumpPayloads writes each entry's raw payload under dir, preserving
// the archive's folder structure.
func dumpPayloads(a *pak.ReadCloser, dir string) error {
	var total uint64
	for _, e := range a.Entries {
		total += uint64(e.SizeCompressed)
	}
	progress.Init(total)
	defer progress.Stop()

	for _, e := range a.Entries {
		rel := filepath.FromSlash(e.Name)
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("entry name escapes the output folder: %q", e.Name)
		}
		dest := filepath.Join(dir, rel)

		data, err := a.ReadPayload(e)
		if err != nil {
			if errors.Is(err, pak.ErrTruncatedPayload) {
				fmt.Println("Warning:", err)
				continue
			}
			return err
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("create folder for %s: %w", dest, err)
		}
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		pw := &progress.Writer{W: f}
		if _, err := pw.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", dest, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", dest, err)
		}
	}
	return nil
}
