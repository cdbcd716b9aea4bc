package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddNote(ctx context.Context) error
	AddBook(ctx context.Context) error
	AddMemory(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Trash(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	EmptyTrash(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Pin(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	Reveal(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	helpCommon = `Available commands:
  status                          show session, server and sync state
  addnote | addbook | addmemory   create an entity
  list <kind>                     list active entities (kind: notes, books, memory)
  search <kind> <query>           search active entities
  trash <kind>                    list trashed entities
  delete <kind> <id>              move to trash
  restore <kind> <id>             restore from trash
  purge <kind> <id>               delete a trashed entity permanently
  emptytrash [kind]               delete all trashed entities permanently
  favorite <kind> <id>            toggle favorite
  archive <kind> <id>             toggle archived
  pin <note id>                   toggle pinned
  reveal <memory id>              show memory item content
  stats                           show statistics
  exit | quit                     leave the program`
	helpAnonymous = "  register | login                create an account or sign in"
	helpLoggedIn  = "  sync | logout                   push pending changes or sign out"
)

// runREPL starts a simple read–eval–print loop for the notekeeper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Command errors are printed and the loop goes on. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("nk %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpCommon + "\n" + helpLoggedIn)
		} else {
			printlnFn(helpCommon + "\n" + helpAnonymous)
		}
		return nil
	case "status":
		return a.Status(ctx)
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "addnote":
		return a.AddNote(ctx)
	case "addbook":
		return a.AddBook(ctx)
	case "addmemory":
		return a.AddMemory(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "trash":
		return a.Trash(ctx, args)
	case "search":
		return a.Search(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "restore":
		return a.Restore(ctx, args)
	case "purge":
		return a.Purge(ctx, args)
	case "emptytrash":
		return a.EmptyTrash(ctx, args)
	case "favorite":
		return a.Favorite(ctx, args)
	case "pin":
		return a.Pin(ctx, args)
	case "archive":
		return a.Archive(ctx, args)
	case "reveal":
		return a.Reveal(ctx, args)
	case "sync":
		return a.Sync(ctx)
	case "stats":
		return a.Stats(ctx)
	}
	printlnFn("Unknown command:", cmd)
	return nil
}
