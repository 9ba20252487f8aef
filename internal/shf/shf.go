// Package shf recovers readable strings from the editor's .NET
// BinaryFormatter save dumps. The framing is not decoded structurally;
// a tolerant byte scan pulls out BinaryObjectString records and a
// pattern-based classifier groups them into a browsable, read-only
// document. The result is a readable approximation, never written back.
package shf

import (
	"sort"
	"strings"

	"github.com/wrenfall/antaloor/internal/binread"
)

// recordString is the BinaryObjectString record type marker.
const recordString = 0x06

// maxStringLen bounds a plausible string record; longer candidates are
// treated as scan noise.
const maxStringLen = 50000

// Extract scans data for string records: the type marker, a 4-byte
// little-endian object id, a 7-bit varint length, then that many UTF-8
// bytes. A candidate is accepted only when the length is in bounds and
// the text is not all NUL; the cursor then jumps past the record,
// otherwise it advances one byte and retries. Later records win on
// duplicate object ids.
func Extract(data []byte) map[uint32]string {
	out := map[uint32]string{}
	r := binread.New(data)
	pos := 0
	for pos < len(data)-6 {
		if data[pos] != recordString {
			pos++
			continue
		}
		r.Seek(pos + 1)
		id, err := r.Uint32()
		if err != nil {
			pos++
			continue
		}
		n, err := r.Uvarint()
		if err != nil || n == 0 || n >= maxStringLen {
			pos++
			continue
		}
		body, err := r.Bytes(int(n))
		if err != nil {
			pos++
			continue
		}
		text := strings.ToValidUTF8(string(body), "�")
		if allNUL(text) {
			pos++
			continue
		}
		out[id] = text
		pos = r.Offset()
	}
	return out
}

func allNUL(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != 0 {
			return false
		}
	}
	return true
}

// sortedValues returns the deduplicated values matching keep, sorted
// lexically.
func sortedValues(strs map[uint32]string, keep func(string) bool) []string {
	set := map[string]bool{}
	for _, v := range strs {
		if keep(v) {
			set[v] = true
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
