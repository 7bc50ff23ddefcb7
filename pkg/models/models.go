package models

import "time"

// Document is a loaded Markdown source. Headings, sections and outlines are
// derived from Content on every read and never stored alongside it.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Origin     Origin    `json:"origin"`
	CategoryID string    `json:"categoryId,omitempty"` // Config category for built-ins
	Source     string    `json:"source,omitempty"`     // Declared location for built-ins
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PersistedDocument is one element of the JSON array stored under the uploads key.
// SectionID carries the origin tag; uploaded entries always store "uploaded".
type PersistedDocument struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	SectionID string     `json:"sectionId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ToPersisted converts a document to its storage shape. Zero timestamps are omitted.
func (d Document) ToPersisted() PersistedDocument {
	p := PersistedDocument{
		ID:        d.ID,
		Name:      d.Name,
		Content:   d.Content,
		SectionID: string(OriginUploaded),
	}
	if !d.CreatedAt.IsZero() {
		created := d.CreatedAt
		p.CreatedAt = &created
	}
	if !d.UpdatedAt.IsZero() {
		updated := d.UpdatedAt
		p.UpdatedAt = &updated
	}
	return p
}

// ToDocument restores an uploaded document from storage.
// Missing timestamps fall back to loadedAt.
func (p PersistedDocument) ToDocument(loadedAt time.Time) Document {
	d := Document{
		ID:        p.ID,
		Name:      p.Name,
		Content:   p.Content,
		Origin:    OriginUploaded,
		CreatedAt: loadedAt,
		UpdatedAt: loadedAt,
	}
	if p.CreatedAt != nil {
		d.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		d.UpdatedAt = *p.UpdatedAt
	} else if p.CreatedAt != nil {
		d.UpdatedAt = *p.CreatedAt
	}
	return d
}

// FileContent is the text of one file read for upload.
type FileContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileFailure records a single file that could not be loaded.
type FileFailure struct {
	Name     string `json:"name"`
	Category string `json:"category"` // utils.Category* value
	Message  string `json:"message"`
}

// UploadReport summarises a batch upload. Every input name appears in exactly
// one of Added (by document name), Duplicates, Rejected or Failures.
type UploadReport struct {
	Added      []Document    `json:"added"`
	Duplicates []string      `json:"duplicates,omitempty"` // Names whose derived id already existed
	Rejected   []string      `json:"rejected,omitempty"`   // Names with an unsupported extension
	Failures   []FileFailure `json:"failures,omitempty"`   // Read failures
}

// HasProblems reports whether any file in the batch was not added.
func (r UploadReport) HasProblems() bool {
	return len(r.Duplicates) > 0 || len(r.Rejected) > 0 || len(r.Failures) > 0
}
