package pak

import "fmt"

// The packing tool writes several fields it derives from other data:
// the header's XOR self-check and each entry's class flag and name
// hash. The parser never enforces them, since real archives disagree
// with the documented derivations in places the tool itself marks as
// unresolved. These helpers recompute the expectations for callers
// that want to flag suspicious files; a field counts as consistent if
// it matches the derivation under either the compressed or the
// decompressed size.

// CheckDerived reports, as human-readable warnings, every derived
// header field that matches neither candidate expectation. An empty
// result means the header is self-consistent.
func (h Header) CheckDerived() []string {
	var warns []string
	if c, d := h.XorCandidates(); h.TableSizeXor != c && h.TableSizeXor != d {
		warns = append(warns, fmt.Sprintf(
			"table-size XOR check is %#08x, expected %#08x or %#08x", h.TableSizeXor, c, d))
	}
	if h.Flag != 1 {
		warns = append(warns, fmt.Sprintf("header flag byte is %d, expected 1", h.Flag))
	}
	return warns
}

// CheckDerived reports every derived entry field that matches neither
// candidate expectation. An empty result means the entry is
// self-consistent.
func (e Entry) CheckDerived() []string {
	var warns []string
	if c, d := e.ClassFlagCandidates(); e.ClassFlag != c && e.ClassFlag != d {
		warns = append(warns, fmt.Sprintf(
			"class flag is %d, expected %d or %d", e.ClassFlag, c, d))
	}
	if c, d := e.NameHashCandidates(); e.NameHash != c && e.NameHash != d {
		warns = append(warns, fmt.Sprintf(
			"name hash is %#08x, expected %#08x or %#08x", e.NameHash, c, d))
	}
	return warns
}
