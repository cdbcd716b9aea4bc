package models

import (
	"strings"
	"time"
)

// Category classifies a note.
type Category string

const (
	CategoryNote      Category = "note"
	CategoryIdea      Category = "idea"
	CategoryTask      Category = "task"
	CategoryJournal   Category = "journal"
	CategoryReference Category = "reference"
)

// Categories lists the accepted note categories.
var Categories = []Category{CategoryNote, CategoryIdea, CategoryTask, CategoryJournal, CategoryReference}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Note is a free-form text record.
type Note struct {
	Meta
	Content  string   `json:"content"`
	Category Category `json:"category"`
	IsPinned bool     `json:"isPinned"`
}

func (n *Note) Normalize(time.Time) {
	if n.Category == "" {
		n.Category = CategoryNote
	}
}

func (n *Note) Validate() error {
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	if !n.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

func (n *Note) SearchFields() []string {
	return []string{n.Content, string(n.Category)}
}
