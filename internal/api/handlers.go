package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wrenfall/antaloor/internal/apperr"
	"github.com/wrenfall/antaloor/internal/docservice"
	"github.com/wrenfall/antaloor/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
	db  index.EntryIndex
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service, db index.EntryIndex) *Handler {
	return &Handler{svc: svc, db: db}
}

// docPath extracts the data-file path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. quests%2Fmain.qtx).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// respondError maps service errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error, action, path string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrReadOnly):
		writeJSON(w, http.StatusForbidden, errorBody("document is read-only"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	case errors.Is(err, apperr.ErrUnsupported):
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported operation for this format"))
	default:
		slog.Error(action+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListFiles handles GET /api/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListFiles()
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]FileItem, len(rows))
	for i, row := range rows {
		items[i] = FileItem{
			Path:      row.Path,
			Format:    row.Format,
			Checksum:  row.Checksum,
			Entries:   row.Entries,
			UpdatedAt: row.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": items,
		"total": len(items),
	})
}

// GetDocument handles GET /api/documents/*.
//
// Query params: ref (node to start from, default the root) and depth
// (child levels to expand, default 1).
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = "."
	}
	depth := 1
	if d, err := strconv.Atoi(r.URL.Query().Get("depth")); err == nil && d >= 0 {
		depth = d
	}

	sess, err := h.svc.Get(path)
	if err != nil {
		respondError(w, err, "get document", path)
		return
	}
	node, err := h.svc.Node(path, ref)
	if err != nil {
		respondError(w, err, "resolve node", path)
		return
	}
	writeJSON(w, http.StatusOK, DocumentView{
		Path:     path,
		Format:   string(sess.Doc.Format),
		Editable: sess.Doc.Editable,
		Checksum: sess.Checksum,
		Node:     nodeView(node, ref, depth),
	})
}

// SetProperty handles PATCH /api/documents/*.
func (h *Handler) SetProperty(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req SetPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Ref == "" || req.Key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("ref and key are required"))
		return
	}
	if err := h.svc.SetProperty(path, req.Ref, req.Key, req.Value); err != nil {
		respondError(w, err, "set property", path)
		return
	}
	node, err := h.svc.Node(path, req.Ref)
	if err != nil {
		respondError(w, err, "resolve node", path)
		return
	}
	writeJSON(w, http.StatusOK, nodeView(node, req.Ref, 0))
}

// SaveDocument handles POST /api/save/*.
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Save(path); err != nil {
		respondError(w, err, "save document", path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Find handles GET /api/find/* — substring search inside one document.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, err := h.svc.Find(path, q, limit)
	if err != nil {
		respondError(w, err, "find", path)
		return
	}
	out := make([]FindMatch, len(matches))
	for i, m := range matches {
		out[i] = FindMatch{Ref: m.Ref, Kind: string(m.Node.Kind), Name: m.Node.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matches": out,
	})
}

// LanguageStats handles GET /api/language/*.
func (h *Handler) LanguageStats(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	stats, err := h.svc.LanguageStats(path)
	if err != nil {
		respondError(w, err, "language stats", path)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Translations handles GET /api/translations/*.
func (h *Handler) Translations(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	f, err := h.svc.Language(path)
	if err != nil {
		respondError(w, err, "translations", path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"translations": translationItems(f.Translations.Entries()),
		"total":        f.Translations.Len(),
	})
}

// Aliases handles GET /api/aliases/*.
func (h *Handler) Aliases(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	f, err := h.svc.Language(path)
	if err != nil {
		respondError(w, err, "aliases", path)
		return
	}
	items := make([]AliasItem, len(f.Aliases))
	for i, a := range f.Aliases {
		items[i] = AliasItem{Key: a.Key, Target: a.Target}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"aliases": items,
	})
}

// Categories handles GET /api/categories/* — translation keys grouped by
// their literal prefix.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	groups, err := h.svc.Categories(path)
	if err != nil {
		respondError(w, err, "categories", path)
		return
	}
	out := make([]CategoryGroup, len(groups))
	for i, g := range groups {
		out[i] = CategoryGroup{Label: g.Label, Entries: translationItems(g.Entries)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": out,
	})
}

// DialogGraph handles GET /api/dialog/*?quest=<id>.
func (h *Handler) DialogGraph(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	quest := r.URL.Query().Get("quest")
	if quest == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'quest' is required"))
		return
	}
	nodes, err := h.svc.DialogGraph(path, quest)
	if err != nil {
		respondError(w, err, "dialog graph", path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quest": quest,
		"nodes": nodes,
	})
}

// Compare handles GET /api/compare/*?other=<path> — classifies every
// translation key of the base file against the other file.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	other := r.URL.Query().Get("other")
	if other == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'other' is required"))
		return
	}
	cmp, err := h.svc.CompareTranslations(path, other)
	if err != nil {
		respondError(w, err, "compare", path)
		return
	}
	view := CompareView{
		Missing:       cmp.Missing,
		Identical:     cmp.Identical,
		Different:     cmp.Different,
		MissingKeys:   cmp.MissingKeys,
		DifferentKeys: cmp.DifferentKeys,
	}
	if view.MissingKeys == nil {
		view.MissingKeys = []string{}
	}
	if view.DifferentKeys == nil {
		view.DifferentKeys = []string{}
	}
	writeJSON(w, http.StatusOK, view)
}

// Search handles GET /api/search — full-text search across all indexed
// files.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
