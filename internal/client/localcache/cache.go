package localcache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// Cache groups the slots of every kind on one device database.
type Cache struct {
	Notes  *Slot[models.Note, *models.Note]
	Books  *Slot[models.Book, *models.Book]
	Memory *Slot[models.MemoryItem, *models.MemoryItem]
}

func New(repo kv.Repository, log logging.Logger) *Cache {
	return &Cache{
		Notes:  NewSlot[models.Note](repo, models.KindNote, log),
		Books:  NewSlot[models.Book](repo, models.KindBook, log),
		Memory: NewSlot[models.MemoryItem](repo, models.KindMemory, log),
	}
}

// Sizes returns the number of cached entities per kind.
func (c *Cache) Sizes(ctx context.Context) (map[models.Kind]int, error) {
	out := make(map[models.Kind]int, len(models.Kinds))

	notes, err := c.Notes.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out[models.KindNote] = len(notes)

	books, err := c.Books.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out[models.KindBook] = len(books)

	items, err := c.Memory.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out[models.KindMemory] = len(items)

	return out, nil
}

// Clear drops every slot.
func (c *Cache) Clear(ctx context.Context) error {
	for _, fn := range []func(context.Context) error{c.Notes.Clear, c.Books.Clear, c.Memory.Clear} {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("clear local cache: %w", err)
		}
	}
	return nil
}
