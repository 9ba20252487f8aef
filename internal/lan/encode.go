package lan

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16leEnc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// EncodeTranslations re-serializes the translation section (count word
// plus entries) using the on-disk layout. For a cleanly decoded file the
// output is byte-identical to the section it was read from; the language
// container itself has no write path, so this exists to prove layout
// fidelity and to build test fixtures.
func EncodeTranslations(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	putUint32(&buf, uint32(t.Len()))
	for _, e := range t.Entries() {
		putString(&buf, e.RawKey())
		if err := putUTF16String(&buf, e.Value); err != nil {
			return nil, fmt.Errorf("lan: encode %q: %w", e.Key, err)
		}
	}
	return buf.Bytes(), nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putString(buf *bytes.Buffer, s string) {
	putUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func putUTF16String(buf *bytes.Buffer, s string) error {
	b, err := utf16leEnc.Bytes([]byte(s))
	if err != nil {
		return err
	}
	putUint32(buf, uint32(len(b)/2))
	buf.Write(b)
	return nil
}
