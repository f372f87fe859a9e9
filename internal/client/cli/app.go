package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/config"
	"github.com/dmitrijs2005/taiglo/internal/client/credentials"
	"github.com/dmitrijs2005/taiglo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taiglo/internal/client/session"
	"github.com/dmitrijs2005/taiglo/internal/filex"
	"github.com/dmitrijs2005/taiglo/internal/logging"
)

const defaultTemplatePath = "template_experiencias.csv"

type App struct {
	config  *config.Config
	db      *sql.DB
	session *session.Manager
	api     *client.Client
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	templatePath string
	lastState    session.State
	unsubscribe  func()
}

// NewApp opens the local database at c.DBPath and wires the backend client
// and session manager around it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, fmt.Errorf("error preparing data directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	if keys, err := repo.Keys(ctx); err != nil {
		logger.Warn(ctx, "listing stored keys", "error", err)
	} else {
		logger.Debug(ctx, "local database opened", "path", c.DBPath, "keys", keys)
	}

	store := credentials.NewMetadataStore(repo)
	api := client.New(c.APIBaseURL)
	mgr := session.New(api, store, logger)
	api.SetTokenSource(mgr)

	a := newApp(mgr, api, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	a.db = db
	return a, nil
}

func newApp(mgr *session.Manager, api *client.Client, logger logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		session:      mgr,
		api:          api,
		logger:       logger,
		reader:       reader,
		out:          out,
		templatePath: defaultTemplatePath,
		lastState:    mgr.State(),
	}
	a.unsubscribe = mgr.Subscribe(a.onStateChange)
	return a
}

// Run restores any saved session and then blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to Taiglo (type 'help' for commands)")
	if a.config != nil {
		a.logger.Debug(ctx, "starting", "api", a.config.APIBaseURL, "db", a.config.DBPath)
	}

	a.session.Initialize(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close detaches from the session manager and closes the database.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.Identity()
	return ok
}

func (a *App) isAdmin() bool {
	id, ok := a.session.Identity()
	return ok && id.IsAdmin()
}

func (a *App) getStatus() string {
	switch s := a.session.State().(type) {
	case session.Authenticated:
		if s.Identity.IsAdmin() {
			return fmt.Sprintf("(%s admin)", s.Identity.Email)
		}
		return fmt.Sprintf("(%s)", s.Identity.Email)
	case session.Verifying:
		return "(verifying)"
	default:
		return ""
	}
}

// onStateChange reports session transitions to the user.
func (a *App) onStateChange(s session.State) {
	prev := a.lastState
	a.lastState = s

	switch st := s.(type) {
	case session.Verifying:
		fmt.Fprintln(a.out, "Checking saved session...")
	case session.Authenticated:
		if _, was := prev.(session.Authenticated); was {
			return
		}
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", st.Identity.FullName(), st.Identity.Email)
	case session.Unauthenticated:
		switch prev.(type) {
		case session.Authenticated:
			fmt.Fprintln(a.out, "Signed out")
		case session.Verifying:
			fmt.Fprintln(a.out, "Saved session has expired, please log in again")
		}
	}
}

// reportError prints a command failure for the user and logs the detail.
func (a *App) reportError(action string, err error) {
	a.logger.Debug(context.Background(), action, "error", err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintf(a.out, "Error %s: not authorized\n", action)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		fmt.Fprintf(a.out, "Error %s: %s\n", action, apiErr.Message)
	default:
		fmt.Fprintf(a.out, "Error %s: %v\n", action, err)
	}
}

func resultErr(res session.Result) error {
	if res.Success {
		return nil
	}
	return errors.New(res.Error)
}
