// Package storage defines the game-data vault file-system abstraction.
package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/wrenfall/antaloor/internal/document"
)

// FileInfo is the metadata the index and the API list for one data file.
type FileInfo struct {
	Path      string
	Format    document.Format
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. Paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every known data file under dir.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// BackupAndWrite copies the existing file to path+".bak" and then
	// atomically writes content. The backup is the recovery route when
	// a later write goes wrong, so a failed backup aborts the save.
	BackupAndWrite(path string, content []byte) error
}

// FormatForPath maps a file extension to its container format.
func FormatForPath(path string) (document.Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lan":
		return document.FormatLAN, true
	case ".idx":
		return document.FormatIDX, true
	case ".qtx":
		return document.FormatQTX, true
	case ".shf":
		return document.FormatSHF, true
	}
	return "", false
}
