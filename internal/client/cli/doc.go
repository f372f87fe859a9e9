// Package cli provides the interactive Taiglo command-line client.
//
// It wires configuration, the local credential database, the backend client
// and the session manager, then runs a REPL. What the REPL offers depends on
// the session: signed-out users can register or log in, signed-in users can
// browse and review experiences, and admins can manage the catalogue.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
