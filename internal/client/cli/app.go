package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/identity"
	"github.com/dmitrijs2005/notekeeper/internal/client/localcache"
	"github.com/dmitrijs2005/notekeeper/internal/client/orchestrator"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	auth    services.AuthService
	session *identity.Session
	cache   *localcache.Cache
	engine  *orchestrator.Engine
	sweeper *orchestrator.Sweeper
	views   map[models.Kind]collection
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
}

// NewApp opens the device database and wires the engine. The remote store
// is dialed lazily, so a missing server only affects authenticated calls.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	session := identity.NewSession()

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, session.Token)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cache := localcache.New(kv.NewSQLiteRepository(db), log)
	engine := newEngine(session, cache, api, log)

	a := &App{
		config:  c,
		db:      db,
		auth:    services.NewAuthService(api, db),
		session: session,
		cache:   cache,
		engine:  engine,
		sweeper: orchestrator.NewSweeper(engine, c.TrashRetention, c.SweepInterval, log),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		log:     log.With("module", "cli"),
	}
	a.views = viewsOf(engine)
	return a, nil
}

func newEngine(gate *identity.Session, cache *localcache.Cache, rc client.RecordClient, log logging.Logger) *orchestrator.Engine {
	notes := orchestrator.New[models.Note](models.KindNote, localcache.NewStore(cache.Notes),
		func(owner string) orchestrator.Store[models.Note] {
			return client.NewRemoteStore[models.Note](rc, models.KindNote, owner)
		}, log)
	books := orchestrator.New[models.Book](models.KindBook, localcache.NewStore(cache.Books),
		func(owner string) orchestrator.Store[models.Book] {
			return client.NewRemoteStore[models.Book](rc, models.KindBook, owner)
		}, log)
	memory := orchestrator.New[models.MemoryItem](models.KindMemory, localcache.NewStore(cache.Memory),
		func(owner string) orchestrator.Store[models.MemoryItem] {
			return client.NewRemoteStore[models.MemoryItem](rc, models.KindMemory, owner)
		}, log)

	return orchestrator.NewEngine(gate, notes, books, memory, log)
}

// restoreSession signs the persisted token back in. An expired or malformed
// token is dropped.
func (a *App) restoreSession(ctx context.Context) {
	token, err := a.auth.SavedToken(ctx)
	if err != nil {
		a.log.Warn(ctx, "read saved session", "error", err)
		return
	}
	if token == "" {
		return
	}
	id, err := a.session.SignIn(token)
	if err != nil || a.session.CurrentUser() == nil {
		a.log.Info(ctx, "saved session is no longer valid")
		_ = a.auth.ClearSession(ctx)
		return
	}
	a.log.Info(ctx, "session restored", "user", id.Username)
}

// Run restores the session, starts the background workers and blocks in
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restoreSession(ctx)
	if err := a.engine.Observe(ctx); err != nil {
		a.log.Error(ctx, "initial session transition", "error", err)
	}
	if err := a.engine.Load(ctx); err != nil {
		a.log.Warn(ctx, "initial load", "error", err)
	}

	go a.engine.Watch(ctx, a.config.ObserveInterval)
	go a.sweeper.Run(ctx)

	fmt.Fprintln(a.out, "Welcome to notekeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.auth.Close(ctx); err != nil {
		a.log.Warn(ctx, "close remote client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

func (a *App) getStatus() string {
	s := a.engine.Mode().String()
	if u := a.session.CurrentUser(); u != nil {
		s = u.Username
	}
	if a.engine.Pending() {
		s += " *"
	}
	return fmt.Sprintf("(%s)", s)
}
