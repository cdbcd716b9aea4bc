package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookKind tells text books (ordered pages) from PDF books (opaque payload).
type BookKind string

const (
	BookKindText BookKind = "text"
	BookKindPDF  BookKind = "pdf"
)

// Page is a sub-entity of a text book.
type Page struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PDF is the opaque payload of a PDF book. Data travels base64-encoded in
// JSON. Key references the payload in remote object storage once offloaded.
type PDF struct {
	Data      []byte `json:"data,omitempty"`
	PageCount int    `json:"pageCount"`
	Key       string `json:"key,omitempty"`
}

// Book is either a list of pages or a PDF payload.
type Book struct {
	Meta
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Kind   BookKind `json:"kind"`
	Pages  []Page   `json:"pages"`
	PDF    *PDF     `json:"pdf"`
}

// Normalize defaults the kind, assigns page ids and renumbers pages 1..n
// in their current order.
func (b *Book) Normalize(now time.Time) {
	if b.Kind == "" {
		b.Kind = BookKindText
		if b.PDF != nil {
			b.Kind = BookKindPDF
		}
	}
	for i := range b.Pages {
		p := &b.Pages[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Number = i + 1
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now.UTC()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
	}
}

func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	switch b.Kind {
	case BookKindText:
		if b.PDF != nil {
			return ErrInvalidBook
		}
	case BookKindPDF:
		if b.PDF == nil || (len(b.PDF.Data) == 0 && b.PDF.Key == "") || b.PDF.PageCount < 0 {
			return ErrInvalidBook
		}
		if len(b.Pages) > 0 {
			return ErrInvalidBook
		}
	default:
		return ErrInvalidBook
	}
	return nil
}

func (b *Book) SearchFields() []string {
	fields := []string{b.Title, b.Author}
	for _, p := range b.Pages {
		fields = append(fields, p.Content)
	}
	return fields
}

// UTC converts book and page timestamps to UTC.
func (b *Book) UTC() {
	b.Meta.UTC()
	if b.Pages == nil {
		return
	}
	pages := make([]Page, len(b.Pages))
	for i, p := range b.Pages {
		p.CreatedAt = p.CreatedAt.UTC()
		p.UpdatedAt = p.UpdatedAt.UTC()
		pages[i] = p
	}
	b.Pages = pages
}

// PageCount returns the number of pages regardless of the book kind.
func (b *Book) PageCount() int {
	if b.Kind == BookKindPDF && b.PDF != nil {
		return b.PDF.PageCount
	}
	return len(b.Pages)
}
