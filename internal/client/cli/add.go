package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// readFile is a test seam for loading PDF payloads.
var readFile = os.ReadFile

func (a *App) AddNote(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "Enter note text", a.out)
	if err != nil {
		return err
	}

	category, err := getSimpleText(a.reader, fmt.Sprintf("Category %v (empty for note)", models.Categories), a.out)
	if err != nil {
		return err
	}

	n, err := a.engine.Notes.Add(ctx, models.Note{Content: content, Category: models.Category(category)})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added note", n.ID)
	return nil
}

func (a *App) AddBook(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	author, err := getSimpleText(a.reader, "Enter author", a.out)
	if err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Kind: text or pdf (empty for text)", a.out)
	if err != nil {
		return err
	}

	b := models.Book{Title: title, Author: author, Kind: models.BookKind(strings.ToLower(kind))}

	switch b.Kind {
	case models.BookKindPDF:
		pdf, err := a.readPDF()
		if err != nil {
			return err
		}
		b.PDF = pdf
	default:
		pages, err := GetLines(a.reader, "Enter pages, one per line", a.out)
		if err != nil {
			return err
		}
		for _, p := range pages {
			b.Pages = append(b.Pages, models.Page{Content: p})
		}
	}

	b, err = a.engine.Books.Add(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added book", b.ID)
	return nil
}

func (a *App) readPDF() (*models.PDF, error) {
	path, err := getSimpleText(a.reader, "Enter PDF file path", a.out)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := getSimpleText(a.reader, "Enter page count", a.out)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(pages)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid page count %q", pages)
	}
	return &models.PDF{Data: data, PageCount: n}, nil
}

// AddMemory creates a memory item. When the user asks for encryption the
// content is sealed with a passphrase before it leaves this function.
func (a *App) AddMemory(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	typ, err := getSimpleText(a.reader, "Type: secret, credential, personal or other (empty for other)", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content", a.out)
	if err != nil {
		return err
	}

	m := models.MemoryItem{
		Title:   title,
		Content: content,
		Tags:    splitList(tags),
		Type:    models.MemoryType(strings.ToLower(typ)),
	}

	encrypt, err := getSimpleText(a.reader, "Encrypt content? (y/N)", a.out)
	if err != nil {
		return err
	}
	if strings.EqualFold(encrypt, "y") {
		passphrase, err := getPassword(a.out)
		if err != nil {
			return err
		}
		m, err = models.SealMemory(m, passphrase)
		common.WipeByteArray(passphrase)
		if err != nil {
			return err
		}
	}

	m, err = a.engine.Memory.Add(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added memory item", m.ID)
	return nil
}
