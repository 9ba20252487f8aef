// Package docservice is the presentation boundary over the format
// decoders: it opens vault files into documents, keeps one live session
// per path, applies edits, and drives the backup-then-write save path.
package docservice

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/wrenfall/antaloor/internal/apperr"
	"github.com/wrenfall/antaloor/internal/checksum"
	"github.com/wrenfall/antaloor/internal/document"
	"github.com/wrenfall/antaloor/internal/idx"
	"github.com/wrenfall/antaloor/internal/lan"
	"github.com/wrenfall/antaloor/internal/qtx"
	"github.com/wrenfall/antaloor/internal/shf"
	"github.com/wrenfall/antaloor/internal/storage"
)

// Session is one open document: the decoded tree plus whatever
// format-specific state the save path needs.
type Session struct {
	Doc      *document.Document
	Checksum string // of the bytes the document was decoded from

	lan *lan.File
	idx *idx.File
}

// Service coordinates storage, decoding, and sessions. A path has at
// most one live session; reopening replaces it wholesale.
type Service struct {
	store storage.Provider
	log   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a document service over the given vault.
func New(store storage.Provider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, log: log, sessions: map[string]*Session{}}
}

// Open reads and decodes the file at path, replacing any existing
// session for it.
func (s *Service) Open(path string) (*Session, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	sess, err := s.decode(path, data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[path] = sess
	s.mu.Unlock()
	s.log.Info("document opened", "path", path, "format", sess.Doc.Format)
	return sess, nil
}

// Get returns the live session for path, opening one if needed.
func (s *Service) Get(path string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[path]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}
	return s.Open(path)
}

func (s *Service) decode(path string, data []byte) (*Session, error) {
	format, ok := storage.FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("docservice: %s: %w", path, apperr.ErrUnsupported)
	}
	sess := &Session{Checksum: checksum.Sum(data)}
	switch format {
	case document.FormatLAN:
		f, err := lan.Decode(data, s.log)
		if err != nil {
			return nil, err
		}
		sess.lan = f
		sess.Doc = lan.Tree(path, f)
	case document.FormatIDX:
		f, err := idx.Decode(path, data)
		if err != nil {
			return nil, err
		}
		sess.idx = f
		sess.Doc = f.Doc
	case document.FormatQTX:
		sess.Doc = qtx.Decode(path, data)
	case document.FormatSHF:
		sess.Doc = shf.Decode(path, data)
	}
	return sess, nil
}

// Save re-encodes the document at path and writes it back, backing up
// the current file first. Read-only formats refuse the save before
// anything touches disk.
func (s *Service) Save(path string) error {
	sess, err := s.Get(path)
	if err != nil {
		return err
	}
	if !sess.Doc.Editable {
		return apperr.ErrReadOnly
	}

	var out []byte
	switch sess.Doc.Format {
	case document.FormatIDX:
		out = sess.idx.Encode()
	case document.FormatQTX:
		out = qtx.Encode(sess.Doc)
	default:
		return apperr.ErrReadOnly
	}

	if err := s.store.BackupAndWrite(path, out); err != nil {
		return err
	}
	sess.Checksum = checksum.Sum(out)
	s.log.Info("document saved", "path", path, "bytes", len(out))
	return nil
}

// Node resolves an ordinal node ref within the document at path.
func (s *Service) Node(path, ref string) (*document.Node, error) {
	sess, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	return sess.Doc.NodeByRef(ref)
}

// SetProperty updates one node property through the document surface,
// so format-specific edit mirroring applies.
func (s *Service) SetProperty(path, ref, key, value string) error {
	sess, err := s.Get(path)
	if err != nil {
		return err
	}
	n, err := sess.Doc.NodeByRef(ref)
	if err != nil {
		return err
	}
	return sess.Doc.Set(n, key, value)
}

// Find searches the document at path.
func (s *Service) Find(path, query string, limit int) ([]document.Match, error) {
	sess, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	return sess.Doc.Find(query, limit), nil
}

// Language returns the decoded LAN model for path, or ErrUnsupported
// when the document is not a language file.
func (s *Service) Language(path string) (*lan.File, error) {
	sess, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	if sess.lan == nil {
		return nil, fmt.Errorf("docservice: %s is not a language file: %w", path, apperr.ErrUnsupported)
	}
	return sess.lan, nil
}

// Categories groups the translations of a language file by key prefix.
func (s *Service) Categories(path string) ([]lan.Group, error) {
	f, err := s.Language(path)
	if err != nil {
		return nil, err
	}
	return lan.Categorize(f.Translations), nil
}

// CompareTranslations classifies every key of the language file at
// base against the one at other.
func (s *Service) CompareTranslations(base, other string) (lan.Comparison, error) {
	bf, err := s.Language(base)
	if err != nil {
		return lan.Comparison{}, err
	}
	of, err := s.Language(other)
	if err != nil {
		return lan.Comparison{}, err
	}
	return lan.Compare(bf.Translations, of.Translations), nil
}
