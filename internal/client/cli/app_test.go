package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/taiglo/internal/client/backendtest"
	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/config"
	"github.com/dmitrijs2005/taiglo/internal/client/credentials"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taiglo/internal/client/session"
	"github.com/dmitrijs2005/taiglo/internal/common"
	"github.com/dmitrijs2005/taiglo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app     *App
	backend *backendtest.Backend
	out     *bytes.Buffer
	store   *credentials.MemoryStore
}

func newTestEnv(t *testing.T, storedToken string) *testEnv {
	t.Helper()
	b := backendtest.New(t)
	api := client.New(b.URL())
	store := credentials.NewMemoryStore(storedToken)
	mgr := session.New(api, store, logging.Discard())
	api.SetTokenSource(mgr)

	out := &bytes.Buffer{}
	a := newApp(mgr, api, logging.Discard(), bufio.NewReader(strings.NewReader("")), out)
	a.templatePath = filepath.Join(t.TempDir(), "template.csv")
	t.Cleanup(a.Close)

	return &testEnv{app: a, backend: b, out: out, store: store}
}

// signIn creates an account on the backend and logs in with it.
func (e *testEnv) signIn(t *testing.T, id models.Identity) models.Identity {
	t.Helper()
	id = e.backend.AddUser(id, "secret1")
	e.app.session.Initialize(context.Background())
	res := e.app.session.Login(context.Background(), id.Email, "secret1")
	require.True(t, res.Success, res.Error)
	e.out.Reset()
	return id
}

// stubInputs answers every prompt, text or password, from answers in order.
func stubInputs(t *testing.T, answers ...string) {
	t.Helper()
	origST, origGP, origML := getSimpleText, getPassword, getMultiline

	next := func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next() }
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next() }
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		v, err := next()
		return []byte(v), err
	}

	t.Cleanup(func() {
		getSimpleText, getPassword, getMultiline = origST, origGP, origML
	})
}

func TestNewApp_OpensDatabase(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL: "http://127.0.0.1:1/api",
		DBPath:     filepath.Join(t.TempDir(), "nested", "session.db"),
		LogLevel:   "error",
	}
	a, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.db)
	require.NoError(t, a.db.PingContext(context.Background()))
	assert.Equal(t, cfg.APIBaseURL, a.api.BaseURL())
	assert.False(t, a.isLoggedIn())
}

func TestNewApp_LogsStoredKeys(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL: "http://127.0.0.1:1/api",
		DBPath:     filepath.Join(t.TempDir(), "session.db"),
	}

	var first bytes.Buffer
	a, err := NewApp(context.Background(), cfg, logging.New(&first, "debug"))
	require.NoError(t, err)
	assert.Contains(t, first.String(), "local database opened")
	assert.Contains(t, first.String(), "keys=[]")
	require.NoError(t, credentials.NewMetadataStore(metadata.NewSQLiteRepository(a.db)).Save(context.Background(), "T0"))
	a.Close()

	var second bytes.Buffer
	a, err = NewApp(context.Background(), cfg, logging.New(&second, "debug"))
	require.NoError(t, err)
	defer a.Close()
	assert.Contains(t, second.String(), "keys=["+common.TokenStorageKey+"]")
}

func TestRun_RestoresSavedSession(t *testing.T) {
	e := newTestEnv(t, "")
	id := e.backend.AddUser(models.Identity{Email: "ana@taiglo.com", FirstName: "Ana", LastName: "Souza"}, "secret1")
	require.NoError(t, e.store.Save(context.Background(), e.backend.IssueToken(id.Email)))

	capturePrints(t)
	e.app.reader = bufio.NewReader(strings.NewReader("exit\n"))
	e.app.Run(context.Background())

	assert.Contains(t, e.out.String(), "Checking saved session...")
	assert.Contains(t, e.out.String(), "Signed in as Ana Souza <ana@taiglo.com>")
}

func TestRun_ExpiredSavedSession(t *testing.T) {
	e := newTestEnv(t, "expired-token")

	capturePrints(t)
	e.app.reader = bufio.NewReader(strings.NewReader(""))
	e.app.Run(context.Background())

	assert.Contains(t, e.out.String(), "Saved session has expired, please log in again")
	tok, _ := e.store.Load(context.Background())
	assert.Empty(t, tok)
}

func TestGetStatus(t *testing.T) {
	e := newTestEnv(t, "")
	assert.Equal(t, "", e.app.getStatus())

	e.signIn(t, models.Identity{Email: "ana@taiglo.com"})
	assert.Equal(t, "(ana@taiglo.com)", e.app.getStatus())
	assert.True(t, e.app.isLoggedIn())
	assert.False(t, e.app.isAdmin())

	e.app.session.Logout(context.Background())
	assert.Equal(t, "", e.app.getStatus())
	assert.Contains(t, e.out.String(), "Signed out")
}

func TestGetStatus_Admin(t *testing.T) {
	e := newTestEnv(t, "")
	e.signIn(t, models.Identity{Email: "root@taiglo.com", Roles: []string{"user", "admin"}})

	assert.Equal(t, "(root@taiglo.com admin)", e.app.getStatus())
	assert.True(t, e.app.isAdmin())
}
