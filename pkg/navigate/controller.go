// Package navigate tracks which document and section are active.
package navigate

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
)

// State is the active selection. The zero value is NoSelection; an empty
// SectionID with a DocumentID means the whole document is shown.
type State struct {
	DocumentID string `json:"documentId,omitempty"`
	SectionID  string `json:"sectionId,omitempty"`
}

// NoSelection is the initial state and the state after the active document disappears.
var NoSelection = State{}

// IsEmpty reports whether nothing is selected.
func (s State) IsEmpty() bool { return s.DocumentID == "" }

// IsWhole reports whether a whole document is selected.
func (s State) IsWhole() bool { return s.DocumentID != "" && s.SectionID == "" }

func (s State) String() string {
	switch {
	case s.IsEmpty():
		return "no-selection"
	case s.IsWhole():
		return s.DocumentID + " (whole)"
	default:
		return s.DocumentID + "#" + s.SectionID
	}
}

// Documents is what the controller needs from the document store.
type Documents interface {
	Get(id string) (models.Document, error)
	Len() int
}

// Controller is the navigation state machine. Every transition validates its
// target first; a refused transition leaves the state unchanged.
type Controller struct {
	mu         sync.RWMutex
	docs       Documents
	level      int
	exclusions []string
	state      State
	log        *logrus.Entry
}

// NewController starts in NoSelection. level is the navigation heading level;
// exclusions filter which headings count as a document's first topic.
func NewController(docs Documents, level int, exclusions []string, logger *logrus.Entry) *Controller {
	if level < markdown.MinLevel || level > markdown.MaxLevel {
		level = markdown.DefaultNavigationLevel
	}
	return &Controller{
		docs:       docs,
		level:      level,
		exclusions: exclusions,
		log:        logger.WithField("component", "navigate"),
	}
}

// Level is the navigation heading level sections are resolved at.
func (c *Controller) Level() int { return c.level }

// State returns the current selection.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SelectWhole shows a whole document.
func (c *Controller) SelectWhole(documentID string) error {
	if _, err := c.docs.Get(documentID); err != nil {
		c.log.Debugf("Refused whole-document selection of '%s': %v", documentID, err)
		return err
	}
	c.set(State{DocumentID: documentID})
	return nil
}

// SelectSection shows one section. Unknown documents or sections are refused
// and the prior state is kept.
func (c *Controller) SelectSection(documentID, sectionID string) (markdown.Section, error) {
	doc, err := c.docs.Get(documentID)
	if err != nil {
		return markdown.Section{}, err
	}
	sec, err := markdown.FindSection(doc.Content, sectionID, c.level)
	if err != nil {
		c.log.Debugf("Refused selection of '%s#%s': %v", documentID, sectionID, err)
		return markdown.Section{}, fmt.Errorf("document %q: %w", documentID, err)
	}
	c.set(State{DocumentID: documentID, SectionID: sectionID})
	return sec, nil
}

// SelectFirst selects the first topic of a document, or the whole document when it has none.
func (c *Controller) SelectFirst(documentID string) (State, error) {
	doc, err := c.docs.Get(documentID)
	if err != nil {
		return c.State(), err
	}
	next := State{DocumentID: doc.ID}
	if topics := markdown.ExtractTopics(doc.Content, c.level, c.exclusions); len(topics) > 0 {
		next.SectionID = topics[0].Slug
	}
	c.set(next)
	return next, nil
}

// OnDocumentRemoved falls back to NoSelection when the removed document was
// active or the store is now empty. Returns true if the state changed.
func (c *Controller) OnDocumentRemoved(documentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsEmpty() {
		return false
	}
	if c.state.DocumentID != documentID && c.docs.Len() > 0 {
		return false
	}
	c.log.Debugf("Active document '%s' removed, clearing selection", documentID)
	c.state = NoSelection
	return true
}

// OnUploadCompleted moves to the first newly added document. A batch that
// added nothing leaves the state unchanged.
func (c *Controller) OnUploadCompleted(added []models.Document) (State, bool) {
	if len(added) == 0 {
		return c.State(), false
	}
	next, err := c.SelectFirst(added[0].ID)
	if err != nil {
		c.log.Warnf("Could not select uploaded document '%s': %v", added[0].ID, err)
		return c.State(), false
	}
	return next, true
}

// Reset returns to NoSelection.
func (c *Controller) Reset() {
	c.set(NoSelection)
}

func (c *Controller) set(next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()
	if prev != next {
		c.log.Debugf("Navigation: %s -> %s", prev, next)
	}
}
