package session

import "github.com/dmitrijs2005/taiglo/internal/client/models"

type (
	Identity      = models.Identity
	ProfileFields = models.Registration
	ProfileUpdate = models.ProfileUpdate
)

// State is one of Unauthenticated, Verifying or Authenticated.
type State interface {
	isState()
	String() string
}

// Unauthenticated means no session is held.
type Unauthenticated struct{}

// Verifying means a stored credential is being checked against the backend.
type Verifying struct{}

// Authenticated carries the identity the backend returned for the credential.
type Authenticated struct {
	Identity Identity
}

func (Unauthenticated) isState() {}
func (Verifying) isState()       {}
func (Authenticated) isState()   {}

func (Unauthenticated) String() string { return "unauthenticated" }
func (Verifying) String() string       { return "verifying" }
func (Authenticated) String() string   { return "authenticated" }

// Result reports the outcome of a user-initiated operation. Error is empty
// when Success is true.
type Result struct {
	Success bool
	Error   string
}
