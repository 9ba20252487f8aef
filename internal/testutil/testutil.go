// Package testutil provides shared test helpers: temp vaults, test
// databases, and minimal valid fixtures for each container format.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/wrenfall/antaloor/internal/index"
	"github.com/wrenfall/antaloor/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "antaloor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// QTXFixture is a small but complete quest definition file.
const QTXFixture = `NPC NPC_12 Hermit M_12 S_3 90 Q_1001 (null) (null) 1.0 True Hermit(10)#Staff(1) 250
  OBJECTS False
END
QUEST Q_1001 ASHOS TheLetter (null) 0 True
  ACTION TELEPORT OnSolve 12 7
END
`

// IDXFixture is a minimal SOAP quest serialization with one quest and
// one dialog text.
const IDXFixture = `<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<SOAP-ENV:Body>
<RootNode id="ref-1"><n>World</n><nodes href="#ref-2" /></RootNode>
<Array id="ref-2"><item href="#ref-3" /></Array>
<NodeQuest id="ref-3"><n>TheLetter</n><iid>Q_1001</iid><nodes href="#ref-4" /></NodeQuest>
<Array id="ref-4"><item href="#ref-5" /></Array>
<NodeQuestDialogText id="ref-5"><text>Take the letter to the hermit.</text></NodeQuestDialogText>
</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

// LANFixture builds a language file with one translation, no aliases,
// and one single-dialog quest whose line the translation covers.
func LANFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("LAN\x00")
	u32(&buf, 1) // version

	// Translations.
	u32(&buf, 2)
	str(&buf, "translateQ_1")
	wstr(&buf, "Take the letter")
	str(&buf, "translateDQ_1.1")
	wstr(&buf, "Here, take this letter to the hermit.")

	// Aliases.
	u32(&buf, 0)

	// Quest dialogs: one quest, a hero line answered by a reply whose
	// successor list includes a dangling index.
	u32(&buf, 1)
	str(&buf, "DQ_1")
	u32(&buf, 2) // dialog count
	u32(&buf, 0) // pad

	u32(&buf, 1) // lector = hero
	str(&buf, "translateDQ_1.1")
	str(&buf, "") // sound cue
	u32(&buf, 1)  // next count
	u32(&buf, 0)  // pad
	u32(&buf, 1)  // next -> reply
	u32(&buf, 0)  // flags
	u32(&buf, 0)  // cam count
	u32(&buf, 0)  // pad
	u32(&buf, 0)  // anim1
	u32(&buf, 0)  // anim2

	u32(&buf, 3) // lector
	str(&buf, "translateDQ_1.2")
	str(&buf, "cue_hermit_01")
	u32(&buf, 2)  // next count
	u32(&buf, 0)  // pad
	u32(&buf, 0)  // back to the hero line
	u32(&buf, 99) // dangling successor
	u32(&buf, 0)  // flags
	u32(&buf, 0)  // cam count
	u32(&buf, 0)  // pad
	u32(&buf, 0)  // anim1
	u32(&buf, 0)  // anim2
	return buf.Bytes()
}

// SHFFixture builds an editor dump containing the given strings as
// BinaryObjectString records.
func SHFFixture(t *testing.T, strs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i, s := range strs {
		if len(s) >= 0x80 {
			t.Fatalf("fixture string too long: %q", s)
		}
		buf.WriteByte(0x06)
		u32(&buf, uint32(100+i))
		buf.WriteByte(byte(len(s)))
		buf.WriteString(s)
		buf.WriteByte(0xFF)
	}
	return buf.Bytes()
}

func u32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// str writes a u32-length-prefixed ASCII string.
func str(buf *bytes.Buffer, s string) {
	u32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// wstr writes a u32 code-unit count and UTF-16LE text. Fixture strings
// are ASCII, so one code unit per byte.
func wstr(buf *bytes.Buffer, s string) {
	u32(buf, uint32(len(s)))
	for i := 0; i < len(s); i++ {
		buf.WriteByte(s[i])
		buf.WriteByte(0)
	}
}
