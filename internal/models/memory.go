package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
)

// MemoryType classifies a memory item.
type MemoryType string

const (
	MemorySecret     MemoryType = "secret"
	MemoryCredential MemoryType = "credential"
	MemoryPersonal   MemoryType = "personal"
	MemoryOther      MemoryType = "other"
)

func (t MemoryType) Valid() bool {
	switch t {
	case MemorySecret, MemoryCredential, MemoryPersonal, MemoryOther:
		return true
	}
	return false
}

// MemoryItem is a secured record. When Encrypted is set, Content holds
// ciphertext produced by SealMemory.
type MemoryItem struct {
	Meta
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags"`
	Type      MemoryType `json:"type"`
	Encrypted bool       `json:"encrypted"`
}

// Normalize lower-cases, trims, de-duplicates and sorts tags.
func (m *MemoryItem) Normalize(time.Time) {
	if m.Type == "" {
		m.Type = MemoryOther
	}
	m.Tags = NormalizeTags(m.Tags)
}

func (m *MemoryItem) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	if !m.Type.Valid() {
		return ErrUnknownMemoryType
	}
	return nil
}

// SearchFields skips ciphertext.
func (m *MemoryItem) SearchFields() []string {
	fields := append([]string{m.Title}, m.Tags...)
	if !m.Encrypted {
		fields = append(fields, m.Content)
	}
	return fields
}

// NormalizeTags turns tags into a sorted set.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SealMemory returns a copy of m with Content encrypted under passphrase.
func SealMemory(m MemoryItem, passphrase []byte) (MemoryItem, error) {
	if m.Encrypted {
		return m, nil
	}
	sealed, err := cryptox.SealString(m.Content, passphrase)
	if err != nil {
		return MemoryItem{}, fmt.Errorf("seal memory item: %w", err)
	}
	m.Content = sealed
	m.Encrypted = true
	return m, nil
}

// OpenMemory returns the plaintext content of m.
func OpenMemory(m MemoryItem, passphrase []byte) (string, error) {
	if !m.Encrypted {
		return m.Content, nil
	}
	plain, err := cryptox.OpenString(m.Content, passphrase)
	if err != nil {
		return "", fmt.Errorf("open memory item: %w", err)
	}
	return plain, nil
}
