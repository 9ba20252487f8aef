package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wrenfall/antaloor/internal/document"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("QUEST Q_1 GRP (null) (null) 0 True\nEND\n")
	if err := s.Write("quests.qtx", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("quests.qtx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("lang/pl/quests.lan", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("lang/pl/quests.lan")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestListKnownFormatsOnly(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("quests.qtx", []byte("a"))
	_ = s.Write("lang/quests.lan", []byte("b"))
	_ = s.Write("save.shf", []byte("c"))
	_ = s.Write("world.idx", []byte("d"))
	_ = s.Write("readme.txt", []byte("not game data"))
	_ = s.Write("quests.qtx.bak", []byte("backup, not data"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("len = %d, want 4: %+v", len(items), items)
	}
	for _, it := range items {
		if it.Format == "" || it.Checksum == "" {
			t.Errorf("incomplete metadata: %+v", it)
		}
		if it.Path == "quests.qtx" && it.Format != document.FormatQTX {
			t.Errorf("format = %s", it.Format)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.qtx",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Verify that if we read during a write the old content is intact
	// (the rename is atomic on POSIX).
	s := tempVault(t)
	original := []byte("original content")
	_ = s.Write("atomic.qtx", original)

	updated := []byte("updated content")
	if err := s.Write("atomic.qtx", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.qtx")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".antaloor-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestBackupAndWrite(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("quests.qtx", []byte("old content"))

	if err := s.BackupAndWrite("quests.qtx", []byte("new content")); err != nil {
		t.Fatalf("BackupAndWrite: %v", err)
	}
	got, _ := s.Read("quests.qtx")
	if string(got) != "new content" {
		t.Errorf("content = %q", got)
	}
	bak, err := s.Read("quests.qtx.bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(bak) != "old content" {
		t.Errorf("backup = %q, want pre-save content", bak)
	}
}

func TestBackupAndWriteFirstSave(t *testing.T) {
	s := tempVault(t)
	if err := s.BackupAndWrite("fresh.qtx", []byte("first")); err != nil {
		t.Fatalf("BackupAndWrite: %v", err)
	}
	if _, err := s.Read("fresh.qtx.bak"); err == nil {
		t.Error("no backup expected when the file did not exist")
	}
}

func TestFormatForPath(t *testing.T) {
	if f, ok := FormatForPath("lang/Quests.LAN"); !ok || f != document.FormatLAN {
		t.Errorf("got (%v,%v)", f, ok)
	}
	if _, ok := FormatForPath("quests.txt"); ok {
		t.Error("unknown extension accepted")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/antaloor-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "antaloor-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
