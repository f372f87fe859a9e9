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

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Health(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Categories(ctx context.Context) error
	Nearby(ctx context.Context, args []string) error
	Show(ctx context.Context, id string) error
	Search(ctx context.Context, query string) error
	Review(ctx context.Context, experienceID string) error
	MyReviews(ctx context.Context) error
	Helpful(ctx context.Context, reviewID string) error

	AdminList(ctx context.Context) error
	AdminCreate(ctx context.Context) error
	AdminEdit(ctx context.Context, id string) error
	AdminDelete(ctx context.Context, id string) error
	AdminUpload(ctx context.Context, path string) error
	AdminTemplate(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, health, exit"
	userHelp  = "Available commands: profile, editprofile, (l)ist [category=<name>] [sort=rating|newest|name] [search], categories, " +
		"nearby <place|lat,lng> [radius_km] [category=<name>], show <id>, review <id>, myreviews, helpful <review-id>, " +
		"search <text>, health, logout, exit"
	adminHelp = "Admin commands: admin-list, admin-create, admin-edit <id>, admin-delete <id>, admin-upload <file>, admin-template"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// Commands that need a session are refused while signed out, and admin
// commands are refused for non-admins. Errors returned by handlers are
// ignored here; handlers report their own failures. The loop exits on EOF
// or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("taiglo %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !allowed(a, cmd) {
			continue
		}

		switch cmd {
		case "help":
			switch {
			case !a.isLoggedIn():
				printlnFn(guestHelp)
			case a.isAdmin():
				printlnFn(userHelp)
				printlnFn(adminHelp)
			default:
				printlnFn(userHelp)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "health":
			_ = a.Health(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "l", "list":
			_ = a.List(ctx, args)

		case "categories":
			_ = a.Categories(ctx)

		case "nearby":
			_ = a.Nearby(ctx, args)

		case "show", "review", "helpful", "admin-edit", "admin-delete", "admin-upload":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <%s>", cmd, argName(cmd)))
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, args[0])
			case "review":
				_ = a.Review(ctx, args[0])
			case "helpful":
				_ = a.Helpful(ctx, args[0])
			case "admin-edit":
				_ = a.AdminEdit(ctx, args[0])
			case "admin-delete":
				_ = a.AdminDelete(ctx, args[0])
			case "admin-upload":
				_ = a.AdminUpload(ctx, args[0])
			}

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <text>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "myreviews":
			_ = a.MyReviews(ctx)

		case "admin-list":
			_ = a.AdminList(ctx)

		case "admin-create":
			_ = a.AdminCreate(ctx)

		case "admin-template":
			_ = a.AdminTemplate(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

var (
	guestCommands = map[string]bool{"help": true, "register": true, "login": true, "health": true, "exit": true, "quit": true}
	userCommands  = map[string]bool{
		"logout": true, "profile": true, "editprofile": true, "l": true, "list": true, "categories": true,
		"nearby": true, "show": true, "review": true, "helpful": true, "search": true, "myreviews": true,
	}
	adminCommands = map[string]bool{
		"admin-list": true, "admin-create": true, "admin-edit": true,
		"admin-delete": true, "admin-upload": true, "admin-template": true,
	}
)

// allowed reports whether cmd may run in the current session, telling the
// user when it may not.
func allowed(a execIface, cmd string) bool {
	loggedIn := a.isLoggedIn()
	switch {
	case loggedIn && (cmd == "login" || cmd == "register"):
		printlnFn("Already signed in, log out first")
		return false
	case guestCommands[cmd], !userCommands[cmd] && !adminCommands[cmd]:
		return true
	case !loggedIn:
		printlnFn("Please log in first (try 'login' or 'register')")
		return false
	case adminCommands[cmd] && !a.isAdmin():
		printlnFn("This command requires the admin role")
		return false
	}
	return true
}

func argName(cmd string) string {
	switch cmd {
	case "helpful":
		return "review-id"
	case "admin-upload":
		return "file"
	default:
		return "experience-id"
	}
}
