package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/models"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---- fake client ----

type fakeClient struct {
	CloseErr    error
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginRet string
	LoginErr error

	PingErr error

	LastRegisterUser string
	LastRegisterSalt []byte
	LastRegisterKey  []byte

	LastGetSaltUser string

	LastLoginUser string
	LastLoginKey  []byte
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, key []byte) error {
	f.LastRegisterUser = username
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterKey = append([]byte(nil), key...)
	return f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	f.LastGetSaltUser = username
	return f.GetSaltRet, f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, key []byte) (string, error) {
	f.LastLoginUser = username
	f.LastLoginKey = append([]byte(nil), key...)
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) List(context.Context, models.Kind, string) ([]json.RawMessage, error) {
	return nil, nil
}
func (f *fakeClient) Insert(_ context.Context, _ models.Kind, _ string, rec json.RawMessage) (json.RawMessage, error) {
	return rec, nil
}
func (f *fakeClient) Update(context.Context, models.Kind, string, string, json.RawMessage) error {
	return nil
}
func (f *fakeClient) Delete(context.Context, models.Kind, string, string) error { return nil }

// ---- tests ----

func TestLogin_GetSaltError_Wrapped(t *testing.T) {
	fc := &fakeClient{GetSaltErr: client.ErrUnavailable}
	svc := NewAuthService(fc, setupDB(t))

	_, err := svc.Login(context.Background(), "alice", []byte("pw"))
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.ErrorContains(t, err, "get salt error")
}

func TestLogin_LoginError_Wrapped(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("salt"), LoginErr: client.ErrUnauthorized}
	svc := NewAuthService(fc, setupDB(t))

	_, err := svc.Login(context.Background(), "alice", []byte("pw"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorContains(t, err, "login error")
}

func TestLogin_Success_SendsVerifierAndSavesToken(t *testing.T) {
	ctx := context.Background()
	salt := []byte("0123456789abcdef0123456789abcdef")
	fc := &fakeClient{GetSaltRet: salt, LoginRet: "tok"}
	svc := NewAuthService(fc, setupDB(t))

	token, err := svc.Login(ctx, "alice", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "tok", token)
	require.Equal(t, "alice", fc.LastGetSaltUser)
	require.Equal(t, cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("pw"), salt)), fc.LastLoginKey)

	saved, err := svc.SavedToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", saved)

	require.NoError(t, svc.ClearSession(ctx))
	saved, err = svc.SavedToken(ctx)
	require.NoError(t, err)
	require.Empty(t, saved)
}

func TestSavedToken_EmptyWithoutLogin(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, setupDB(t))

	token, err := svc.SavedToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
	require.NoError(t, svc.ClearSession(context.Background()))
}

func TestRegister_DelegatesToClient(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, setupDB(t))

	require.NoError(t, svc.Register(context.Background(), "bob", []byte("pw")))
	require.Equal(t, "bob", fc.LastRegisterUser)
	require.Len(t, fc.LastRegisterSalt, 32)
	require.Equal(t, cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("pw"), fc.LastRegisterSalt)), fc.LastRegisterKey)
}

func TestRegister_ErrorFromClient(t *testing.T) {
	want := errors.New("exists")
	svc := NewAuthService(&fakeClient{RegisterErr: want}, setupDB(t))
	require.ErrorIs(t, svc.Register(context.Background(), "bob", []byte("pw")), want)
}

func TestPing_Close_Delegations(t *testing.T) {
	svc := NewAuthService(&fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("close")}, setupDB(t))

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.EqualError(t, svc.Close(context.Background()), "close")
}
