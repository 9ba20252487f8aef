package index

import (
	"log/slog"
	"time"

	"github.com/wrenfall/antaloor/internal/checksum"
	"github.com/wrenfall/antaloor/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed data files are decoded and upserted
//   - files removed from disk are deleted from the index
//
// A file the decoder rejects is logged and skipped; one corrupt file
// must not block indexing of the rest of the vault.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, logger); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile decodes data and upserts the recovered entries into the DB.
func indexFile(db *DB, path string, data []byte, logger *slog.Logger) error {
	format, entries, err := extract(path, data, logger)
	if err != nil {
		return err
	}

	row := FileRow{
		Path:      path,
		Format:    string(format),
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	return db.UpsertFile(row, entries)
}
