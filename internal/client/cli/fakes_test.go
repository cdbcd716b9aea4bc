package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/identity"
	"github.com/dmitrijs2005/notekeeper/internal/client/localcache"
	"github.com/dmitrijs2005/notekeeper/internal/client/orchestrator"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, userID, username string) string {
	t.Helper()
	c := jwt.MapClaims{
		"UserID":   userID,
		"Username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

type fakeAuth struct {
	regUser string
	regPass []byte
	regErr  error

	loginUser  string
	loginPass  []byte
	loginToken string
	loginErr   error

	saved       string
	clearCalled bool
	clearErr    error
	pingErr     error
}

func (f *fakeAuth) Register(_ context.Context, user string, pass []byte) error {
	f.regUser, f.regPass = user, append([]byte(nil), pass...)
	return f.regErr
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (string, error) {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	if f.loginErr != nil {
		return "", f.loginErr
	}
	f.saved = f.loginToken
	return f.loginToken, nil
}

func (f *fakeAuth) SavedToken(context.Context) (string, error) { return f.saved, nil }

func (f *fakeAuth) ClearSession(context.Context) error {
	f.clearCalled = true
	f.saved = ""
	return f.clearErr
}

func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

// fakeRecords is an in-memory remote store keyed by kind and owner.
type fakeRecords struct {
	mu   sync.Mutex
	seq  int
	docs map[string][]map[string]any
	down bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{docs: map[string][]map[string]any{}}
}

func bucket(kind models.Kind, owner string) string { return string(kind) + "/" + owner }

func (f *fakeRecords) List(_ context.Context, kind models.Kind, owner string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, client.ErrUnavailable
	}
	var out []json.RawMessage
	for _, d := range f.docs[bucket(kind, owner)] {
		raw, _ := json.Marshal(d)
		out = append(out, raw)
	}
	return out, nil
}

func (f *fakeRecords) Insert(_ context.Context, kind models.Kind, owner string, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, client.ErrUnavailable
	}
	var doc map[string]any
	if err := json.Unmarshal(record, &doc); err != nil {
		return nil, err
	}
	f.seq++
	doc["id"] = fmt.Sprintf("r%d", f.seq)
	f.docs[bucket(kind, owner)] = append(f.docs[bucket(kind, owner)], doc)
	return json.Marshal(doc)
}

func (f *fakeRecords) Update(_ context.Context, kind models.Kind, owner, id string, patch json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return client.ErrUnavailable
	}
	var p map[string]any
	if err := json.Unmarshal(patch, &p); err != nil {
		return err
	}
	for _, d := range f.docs[bucket(kind, owner)] {
		if d["id"] == id {
			for k, v := range p {
				d[k] = v
			}
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeRecords) Delete(_ context.Context, kind models.Kind, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return client.ErrUnavailable
	}
	docs := f.docs[bucket(kind, owner)]
	for i, d := range docs {
		if d["id"] == id {
			f.docs[bucket(kind, owner)] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRecords) count(kind models.Kind, owner string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[bucket(kind, owner)])
}

type testApp struct {
	*App
	auth   *fakeAuth
	remote *fakeRecords
	out    *bytes.Buffer
}

func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Discard()
	session := identity.NewSession()
	cache := localcache.New(kv.NewSQLiteRepository(db), log)
	remote := newFakeRecords()
	engine := newEngine(session, cache, remote, log)
	auth := &fakeAuth{}
	out := &bytes.Buffer{}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	a := &App{
		config:  cfg,
		auth:    auth,
		session: session,
		cache:   cache,
		engine:  engine,
		sweeper: orchestrator.NewSweeper(engine, cfg.TrashRetention, cfg.SweepInterval, log),
		reader:  readerFromLines(input...),
		out:     out,
		log:     log,
	}
	a.views = viewsOf(engine)
	return &testApp{App: a, auth: auth, remote: remote, out: out}
}

func (ta *testApp) feed(lines ...string) {
	ta.reader = readerFromLines(lines...)
}

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// stubPassword makes getPassword return pw without touching the terminal.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
