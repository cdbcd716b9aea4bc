package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/client/orchestrator"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// collection is the kind-independent command surface of one orchestrator.
type collection interface {
	Active(ctx context.Context) ([]string, error)
	Trashed(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]string, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	EmptyTrash(ctx context.Context) (int, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	ToggleArchived(ctx context.Context, id string) (bool, error)
}

type view[T any, P models.Entity[T]] struct {
	o      *orchestrator.Orchestrator[T, P]
	format func(*T) string
}

func viewsOf(e *orchestrator.Engine) map[models.Kind]collection {
	return map[models.Kind]collection{
		models.KindNote:   &view[models.Note, *models.Note]{o: e.Notes, format: formatNote},
		models.KindBook:   &view[models.Book, *models.Book]{o: e.Books, format: formatBook},
		models.KindMemory: &view[models.MemoryItem, *models.MemoryItem]{o: e.Memory, format: formatMemory},
	}
}

func (v *view[T, P]) lines(items []T, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i := range items {
		out = append(out, v.format(&items[i]))
	}
	return out, nil
}

func (v *view[T, P]) Active(ctx context.Context) ([]string, error) {
	return v.lines(v.o.Active(ctx))
}

func (v *view[T, P]) Trashed(ctx context.Context) ([]string, error) {
	return v.lines(v.o.Trash(ctx))
}

// Search skips trashed matches.
func (v *view[T, P]) Search(ctx context.Context, query string) ([]string, error) {
	found, err := v.o.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	active := found[:0]
	for i := range found {
		if !P(&found[i]).Metadata().InTrash {
			active = append(active, found[i])
		}
	}
	return v.lines(active, nil)
}

func (v *view[T, P]) SoftDelete(ctx context.Context, id string) error {
	_, err := v.o.SoftDelete(ctx, id)
	return err
}

func (v *view[T, P]) Restore(ctx context.Context, id string) error {
	_, err := v.o.Restore(ctx, id)
	return err
}

func (v *view[T, P]) Purge(ctx context.Context, id string) error {
	return v.o.PurgeOne(ctx, id)
}

func (v *view[T, P]) EmptyTrash(ctx context.Context) (int, error) {
	return v.o.PurgeAll(ctx)
}

func (v *view[T, P]) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	out, err := v.o.ToggleFavorite(ctx, id)
	if err != nil {
		return false, err
	}
	return P(&out).Metadata().Favorite, nil
}

func (v *view[T, P]) ToggleArchived(ctx context.Context, id string) (bool, error) {
	cur, err := v.o.Get(ctx, id)
	if err != nil {
		return false, err
	}
	out, err := v.o.SetArchived(ctx, id, !P(&cur).Metadata().Archived)
	if err != nil {
		return false, err
	}
	return P(&out).Metadata().Archived, nil
}

func flags(m *models.Meta, extra ...string) string {
	var f []string
	if m.Favorite {
		f = append(f, "favorite")
	}
	if m.Archived {
		f = append(f, "archived")
	}
	f = append(f, extra...)
	if !m.Synced {
		f = append(f, "unsynced")
	}
	if m.InTrash && m.TrashedAt != nil {
		f = append(f, "trashed "+m.TrashedAt.Format("2006-01-02"))
	}
	if len(f) == 0 {
		return ""
	}
	return " (" + strings.Join(f, ", ") + ")"
}

// preview returns the first line of s cut to n runes.
func preview(s string, n int) string {
	s, _, cut := strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	if cut {
		return s + "..."
	}
	return s
}

func formatNote(n *models.Note) string {
	var extra []string
	if n.IsPinned {
		extra = append(extra, "pinned")
	}
	return fmt.Sprintf("%s  [%s] %s%s", n.ID, n.Category, preview(n.Content, 60), flags(&n.Meta, extra...))
}

func formatBook(b *models.Book) string {
	by := ""
	if b.Author != "" {
		by = " by " + b.Author
	}
	return fmt.Sprintf("%s  %q%s [%s, %d pages]%s", b.ID, b.Title, by, b.Kind, b.PageCount(), flags(&b.Meta))
}

func formatMemory(m *models.MemoryItem) string {
	content := preview(m.Content, 40)
	if m.Encrypted {
		content = "<encrypted>"
	}
	tags := ""
	if len(m.Tags) > 0 {
		tags = " #" + strings.Join(m.Tags, " #")
	}
	return fmt.Sprintf("%s  %s [%s] %s%s%s", m.ID, m.Title, m.Type, content, tags, flags(&m.Meta))
}
