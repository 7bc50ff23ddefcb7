// Package library is the document store: it owns every loaded document,
// enforces id uniqueness for uploads and persists the uploaded subset.
package library

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/storage"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

const (
	// UploadedIDPrefix namespaces ids derived from upload file names.
	UploadedIDPrefix = "uploaded-"

	// DefaultStorageKey is the key the uploaded documents are persisted under.
	DefaultStorageKey = "uploadedFiles"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// UploadedID derives the document id for an uploaded file name:
// extension stripped, lowercased, every non [a-z0-9] character replaced by '-'.
func UploadedID(fileName string) string {
	base := strings.ToLower(utils.TrimExtension(fileName))
	return UploadedIDPrefix + nonAlphanumeric.ReplaceAllString(base, "-")
}

// UploadedName is the display name for an uploaded file: the file name without its extension.
func UploadedName(fileName string) string {
	return utils.TrimExtension(fileName)
}

// RemovalListener is notified after a document leaves the library.
type RemovalListener func(doc models.Document)

// Options configures a Library.
type Options struct {
	KV         storage.KVStore // nil disables persistence
	StorageKey string          // Defaults to DefaultStorageKey
	Logger     *logrus.Entry
	Clock      func() time.Time // Defaults to time.Now
}

// Library holds the loaded documents in insertion order.
type Library struct {
	mu        sync.RWMutex
	docs      map[string]*models.Document
	order     []string
	pending   map[string]string // removal token -> document id
	listeners []RemovalListener

	persistMu  sync.Mutex // Held across snapshot and write in PersistUploaded
	kv         storage.KVStore
	storageKey string
	log        *logrus.Entry
	now        func() time.Time
}

// New creates an empty library.
func New(opts Options) *Library {
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Library{
		docs:       make(map[string]*models.Document),
		pending:    make(map[string]string),
		kv:         opts.KV,
		storageKey: opts.StorageKey,
		log:        opts.Logger.WithField("component", "library"),
		now:        opts.Clock,
	}
}

// OnRemove registers a listener called after every removal.
// Listeners run outside the library lock and may call back into it.
func (l *Library) OnRemove(fn RemovalListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// --- Reads ---

// Get returns a copy of the document with id.
func (l *Library) Get(id string) (models.Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, ok := l.docs[id]
	if !ok {
		return models.Document{}, fmt.Errorf("%w: document %q", utils.ErrNotFound, id)
	}
	return *doc, nil
}

// Has reports whether a document with id is loaded.
func (l *Library) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.docs[id]
	return ok
}

// List returns every document in insertion order.
func (l *Library) List() []models.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Document, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.docs[id])
	}
	return out
}

// ListByOrigin returns documents of one origin in insertion order.
func (l *Library) ListByOrigin(origin models.Origin) []models.Document {
	var out []models.Document
	for _, doc := range l.List() {
		if doc.Origin == origin {
			out = append(out, doc)
		}
	}
	return out
}

// Len is the number of loaded documents.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// --- Mutations ---

// UpsertBuiltIn inserts or replaces a configuration-declared document. It always succeeds.
func (l *Library) UpsertBuiltIn(doc models.Document) models.Document {
	l.mu.Lock()
	now := l.now()
	doc.Origin = models.OriginBuiltIn
	doc.UpdatedAt = now

	prev, exists := l.docs[doc.ID]
	displacedUpload := exists && prev.Origin == models.OriginUploaded
	if exists {
		doc.CreatedAt = prev.CreatedAt
		*prev = doc
	} else {
		doc.CreatedAt = now
		l.insertLocked(&doc)
	}
	l.mu.Unlock()

	if displacedUpload {
		l.log.Warnf("Built-in document '%s' replaced an uploaded document with the same id", doc.ID)
		l.persistQuietly()
	}
	return doc
}

// AddUploaded adds one uploaded file. A colliding id is rejected with ErrDuplicate
// and the existing document is left untouched.
func (l *Library) AddUploaded(fileName, content string) (models.Document, error) {
	doc, err := l.addUploaded(fileName, content)
	if err != nil {
		return models.Document{}, err
	}
	l.persistQuietly()
	return doc, nil
}

func (l *Library) addUploaded(fileName, content string) (models.Document, error) {
	id := UploadedID(fileName)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.docs[id]; exists {
		return models.Document{}, fmt.Errorf("%w: %q (id %s)", utils.ErrDuplicate, fileName, id)
	}
	now := l.now()
	doc := &models.Document{
		ID:        id,
		Name:      UploadedName(fileName),
		Content:   content,
		Origin:    models.OriginUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.insertLocked(doc)
	return *doc, nil
}

// AddUploadedBatch adds files in order. Collisions, with existing documents or
// with earlier files of the same batch, are reported as duplicates while the
// rest of the batch still loads. The uploaded subset is persisted once.
func (l *Library) AddUploadedBatch(files []models.FileContent) models.UploadReport {
	var report models.UploadReport
	for _, f := range files {
		doc, err := l.addUploaded(f.Name, f.Content)
		if err != nil {
			report.Duplicates = append(report.Duplicates, f.Name)
			continue
		}
		report.Added = append(report.Added, doc)
	}
	if len(report.Duplicates) > 0 {
		l.log.Warnf("Skipped %d duplicate upload(s): %s", len(report.Duplicates), strings.Join(report.Duplicates, ", "))
	}
	if len(report.Added) > 0 {
		l.log.Infof("Added %d uploaded document(s)", len(report.Added))
		l.persistQuietly()
	}
	return report
}

// ReplaceContent swaps a document's content and bumps UpdatedAt.
func (l *Library) ReplaceContent(id, content string) (models.Document, error) {
	l.mu.Lock()
	doc, ok := l.docs[id]
	if !ok {
		l.mu.Unlock()
		return models.Document{}, fmt.Errorf("%w: document %q", utils.ErrNotFound, id)
	}
	doc.Content = content
	doc.UpdatedAt = l.now()
	updated := *doc
	l.mu.Unlock()

	if updated.Origin.Persisted() {
		l.persistQuietly()
	}
	return updated, nil
}

// Remove deletes a document immediately. Presentation code should normally
// go through RequestRemoval and ConfirmRemoval instead.
func (l *Library) Remove(id string) (models.Document, error) {
	l.mu.Lock()
	doc, ok := l.docs[id]
	if !ok {
		l.mu.Unlock()
		return models.Document{}, fmt.Errorf("%w: document %q", utils.ErrNotFound, id)
	}
	removed := *doc
	l.deleteLocked(id)
	listeners := append([]RemovalListener(nil), l.listeners...)
	l.mu.Unlock()

	l.log.Infof("Removed document '%s' (%s)", removed.ID, removed.Origin)
	if removed.Origin.Persisted() {
		l.persistQuietly()
	}
	for _, fn := range listeners {
		fn(removed)
	}
	return removed, nil
}

// RequestRemoval starts a two-step removal and returns the confirmation token.
func (l *Library) RequestRemoval(id string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.docs[id]; !ok {
		return "", fmt.Errorf("%w: document %q", utils.ErrNotFound, id)
	}
	token := uuid.NewString()
	l.pending[token] = id
	return token, nil
}

// PendingRemoval returns the document id a token would remove.
func (l *Library) PendingRemoval(token string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.pending[token]
	return id, ok
}

// ConfirmRemoval completes a removal started by RequestRemoval. Tokens are single-use.
func (l *Library) ConfirmRemoval(token string) (models.Document, error) {
	l.mu.Lock()
	id, ok := l.pending[token]
	delete(l.pending, token)
	l.mu.Unlock()

	if !ok {
		return models.Document{}, fmt.Errorf("%w: %s", utils.ErrRemovalNotPending, token)
	}
	return l.Remove(id)
}

// CancelRemoval discards a pending removal. Returns false for unknown tokens.
func (l *Library) CancelRemoval(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[token]
	delete(l.pending, token)
	return ok
}

// Clear drops every document and pending removal without touching storage.
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = make(map[string]*models.Document)
	l.order = nil
	l.pending = make(map[string]string)
}

func (l *Library) insertLocked(doc *models.Document) {
	l.docs[doc.ID] = doc
	l.order = append(l.order, doc.ID)
}

func (l *Library) deleteLocked(id string) {
	delete(l.docs, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	for token, pendingID := range l.pending {
		if pendingID == id {
			delete(l.pending, token)
		}
	}
}

// --- Persistence ---

// PersistUploaded writes every uploaded document to the KV store as a JSON array.
// When no uploads remain the key is deleted.
func (l *Library) PersistUploaded() error {
	if l.kv == nil {
		return nil
	}
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	uploaded := l.ListByOrigin(models.OriginUploaded)
	if len(uploaded) == 0 {
		return l.kv.Delete(l.storageKey)
	}

	entries := make([]models.PersistedDocument, 0, len(uploaded))
	for _, doc := range uploaded {
		entries = append(entries, doc.ToPersisted())
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encoding uploaded documents as JSON: %w", utils.ErrParsing, err)
	}
	if err := l.kv.Put(l.storageKey, data); err != nil {
		return err
	}
	l.log.Debugf("Persisted %d uploaded document(s) under '%s'", len(entries), l.storageKey)
	return nil
}

func (l *Library) persistQuietly() {
	if err := l.PersistUploaded(); err != nil {
		l.log.Errorf("Failed to persist uploaded documents (%s): %v", utils.CategorizeError(err), err)
	}
}

// LoadPersisted merges previously persisted uploads into the library and returns
// how many were restored. Unreadable state is reported as ErrStorageCorrupt and
// leaves the library unchanged; callers treat it as "no prior uploads".
func (l *Library) LoadPersisted() (int, error) {
	if l.kv == nil {
		return 0, nil
	}

	data, found, err := l.kv.Get(l.storageKey)
	if err != nil {
		l.log.Warnf("Could not read persisted uploads, starting empty: %v", err)
		return 0, fmt.Errorf("%w: %w", utils.ErrStorageCorrupt, err)
	}
	if !found || len(data) == 0 {
		return 0, nil
	}

	var entries []models.PersistedDocument
	if err := json.Unmarshal(data, &entries); err != nil {
		l.log.Warnf("Persisted uploads under '%s' are corrupt, starting empty: %v", l.storageKey, err)
		return 0, fmt.Errorf("%w: decoding JSON under key '%s': %w", utils.ErrStorageCorrupt, l.storageKey, err)
	}

	loadedAt := l.now()
	restored := 0
	l.mu.Lock()
	for _, entry := range entries {
		if entry.ID == "" {
			l.log.Warn("Skipping persisted upload without an id")
			continue
		}
		if _, exists := l.docs[entry.ID]; exists {
			l.log.Warnf("Skipping persisted upload '%s': id already loaded", entry.ID)
			continue
		}
		doc := entry.ToDocument(loadedAt)
		l.insertLocked(&doc)
		restored++
	}
	l.mu.Unlock()

	l.log.Infof("Restored %d uploaded document(s) from storage", restored)
	return restored, nil
}
