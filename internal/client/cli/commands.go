package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/stats"
)

var errUsage = errors.New("usage")

// parseKind accepts the user-facing kind names.
func parseKind(s string) (models.Kind, error) {
	switch strings.ToLower(s) {
	case "note", "notes":
		return models.KindNote, nil
	case "book", "books":
		return models.KindBook, nil
	case "memory", "memories", "memory_items":
		return models.KindMemory, nil
	}
	return "", fmt.Errorf("unknown kind %q, want notes, books or memory", s)
}

func (a *App) collection(args []string, n int, usage string) (collection, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%w: %s", errUsage, usage)
	}
	k, err := parseKind(args[0])
	if err != nil {
		return nil, err
	}
	return a.views[k], nil
}

func (a *App) printLines(lines []string, err error) error {
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Nothing here.")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(a.out, l)
	}
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	c, err := a.collection(args, 1, "list <notes|books|memory>")
	if err != nil {
		return err
	}
	return a.printLines(c.Active(ctx))
}

func (a *App) Trash(ctx context.Context, args []string) error {
	c, err := a.collection(args, 1, "trash <notes|books|memory>")
	if err != nil {
		return err
	}
	return a.printLines(c.Trashed(ctx))
}

func (a *App) Search(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "search <notes|books|memory> <query>")
	if err != nil {
		return err
	}
	return a.printLines(c.Search(ctx, strings.Join(args[1:], " ")))
}

func (a *App) Delete(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "delete <kind> <id>")
	if err != nil {
		return err
	}
	if err := c.SoftDelete(ctx, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Moved to trash.")
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "restore <kind> <id>")
	if err != nil {
		return err
	}
	if err := c.Restore(ctx, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Restored.")
	return nil
}

func (a *App) Purge(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "purge <kind> <id>")
	if err != nil {
		return err
	}
	if err := c.Purge(ctx, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted permanently.")
	return nil
}

// EmptyTrash purges the trash of one kind, or of every kind without args.
func (a *App) EmptyTrash(ctx context.Context, args []string) error {
	kinds := models.Kinds
	if len(args) > 0 {
		k, err := parseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []models.Kind{k}
	}

	total := 0
	var errs []error
	for _, k := range kinds {
		n, err := a.views[k].EmptyTrash(ctx)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	fmt.Fprintf(a.out, "Deleted %d item(s) permanently.\n", total)
	return errors.Join(errs...)
}

func (a *App) Favorite(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "favorite <kind> <id>")
	if err != nil {
		return err
	}
	on, err := c.ToggleFavorite(ctx, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Favorite:", on)
	return nil
}

func (a *App) Archive(ctx context.Context, args []string) error {
	c, err := a.collection(args, 2, "archive <kind> <id>")
	if err != nil {
		return err
	}
	on, err := c.ToggleArchived(ctx, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Archived:", on)
	return nil
}

// Pin toggles the pinned flag of a note.
func (a *App) Pin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: pin <note id>", errUsage)
	}
	n, err := a.engine.Notes.Get(ctx, args[0])
	if err != nil {
		return err
	}
	n, err = a.engine.SetPinned(ctx, n.ID, !n.IsPinned)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Pinned:", n.IsPinned)
	return nil
}

// Reveal prints the content of a memory item, asking for the passphrase
// when it is encrypted.
func (a *App) Reveal(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: reveal <memory id>", errUsage)
	}
	m, err := a.engine.Memory.Get(ctx, args[0])
	if err != nil {
		return err
	}

	var passphrase []byte
	if m.Encrypted {
		if passphrase, err = getPassword(a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(passphrase)
	}

	content, err := models.OpenMemory(m, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, m.Title)
	fmt.Fprintln(a.out, content)
	return nil
}

// Sync pushes pending changes. Local data left over from an interrupted
// migration is retried first.
func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errors.New("login to sync")
	}

	mixed, err := a.engine.MixedState(ctx)
	if err != nil {
		return err
	}
	if mixed {
		if err := a.engine.RetryMigration(ctx); err != nil {
			return fmt.Errorf("migration still incomplete: %w", err)
		}
	}

	if !a.engine.Sync(ctx) {
		fmt.Fprintln(a.out, "Sync incomplete, changes stay pending.")
		return nil
	}
	fmt.Fprintln(a.out, "Everything is synced.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	fmt.Fprintln(a.out, "Mode:", a.engine.Mode())
	if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintln(a.out, "User:", u.Username)
		fmt.Fprintln(a.out, "Session expires:", u.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out, "Pending changes:", a.engine.Pending())

	if err := a.auth.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server: unreachable")
	} else {
		fmt.Fprintln(a.out, "Server: reachable")
	}

	sizes, err := a.cache.Sizes(ctx)
	if err != nil {
		return err
	}
	for _, k := range models.Kinds {
		fmt.Fprintf(a.out, "On device %s: %d\n", k, sizes[k])
	}

	mixed, err := a.engine.MixedState(ctx)
	if err != nil {
		return err
	}
	if mixed {
		fmt.Fprintln(a.out, "Some local data has not been migrated yet. Run 'sync' to retry.")
	}
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.engine.Stats(ctx)
	if err != nil {
		return err
	}

	for _, row := range []struct {
		name string
		c    stats.Counts
	}{{"Notes", s.Notes}, {"Books", s.Books}, {"Memory", s.Memory}} {
		fmt.Fprintf(a.out, "%-7s %d total, %d active, %d in trash, %d favorite, %d archived\n",
			row.name+":", row.c.Total, row.c.Active, row.c.Trashed, row.c.Favorites, row.c.Archived)
	}

	fmt.Fprintln(a.out, "Pinned notes:", s.PinnedNotes)
	for _, c := range models.Categories {
		if n := s.NotesByCategory[c]; n > 0 {
			fmt.Fprintf(a.out, "  %s: %d\n", c, n)
		}
	}
	fmt.Fprintln(a.out, "Book pages:", s.BookPages, "PDF books:", s.PDFBooks)
	fmt.Fprintln(a.out, "Encrypted memory items:", s.EncryptedItems)

	if len(s.Tags) > 0 {
		tags := make([]string, 0, len(s.Tags))
		for t := range s.Tags {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		for i, t := range tags {
			tags[i] = fmt.Sprintf("%s(%d)", t, s.Tags[t])
		}
		fmt.Fprintln(a.out, "Tags:", strings.Join(tags, " "))
	}
	if !s.Oldest.IsZero() {
		fmt.Fprintln(a.out, "Since:", s.Oldest.Local().Format("2006-01-02"))
	}
	return nil
}
