// Package stats derives read-only figures from the entity collections, for
// achievements and the status screen. Nothing here writes back.
package stats

import (
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// Counts are lifecycle counters of one kind. Active excludes trashed items.
type Counts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Trashed   int `json:"trashed"`
	Favorites int `json:"favorites"`
	Archived  int `json:"archived"`
}

type Summary struct {
	Notes  Counts `json:"notes"`
	Books  Counts `json:"books"`
	Memory Counts `json:"memory"`

	NotesByCategory map[models.Category]int `json:"notesByCategory"`
	PinnedNotes     int                     `json:"pinnedNotes"`
	BookPages       int                     `json:"bookPages"`
	PDFBooks        int                     `json:"pdfBooks"`
	Tags            map[string]int          `json:"tags"`
	EncryptedItems  int                     `json:"encryptedItems"`

	// Oldest and Newest span createdAt over every kind. Zero when empty.
	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

// Summarize counts trashed items in Total and Trashed only; the per-kind
// breakdowns cover active items.
func Summarize(notes []models.Note, books []models.Book, items []models.MemoryItem) Summary {
	s := Summary{
		NotesByCategory: map[models.Category]int{},
		Tags:            map[string]int{},
	}

	for i := range notes {
		n := &notes[i]
		if s.Notes.add(&n.Meta) {
			s.NotesByCategory[n.Category]++
			if n.IsPinned {
				s.PinnedNotes++
			}
		}
		s.span(n.CreatedAt)
	}

	for i := range books {
		b := &books[i]
		if s.Books.add(&b.Meta) {
			s.BookPages += b.PageCount()
			if b.Kind == models.BookKindPDF {
				s.PDFBooks++
			}
		}
		s.span(b.CreatedAt)
	}

	for i := range items {
		m := &items[i]
		if s.Memory.add(&m.Meta) {
			for _, tag := range m.Tags {
				s.Tags[tag]++
			}
			if m.Encrypted {
				s.EncryptedItems++
			}
		}
		s.span(m.CreatedAt)
	}

	return s
}

// add reports whether m is active.
func (c *Counts) add(m *models.Meta) bool {
	c.Total++
	if m.InTrash {
		c.Trashed++
		return false
	}
	c.Active++
	if m.Favorite {
		c.Favorites++
	}
	if m.Archived {
		c.Archived++
	}
	return true
}

func (s *Summary) span(at time.Time) {
	if at.IsZero() {
		return
	}
	if s.Oldest.IsZero() || at.Before(s.Oldest) {
		s.Oldest = at
	}
	if at.After(s.Newest) {
		s.Newest = at
	}
}
