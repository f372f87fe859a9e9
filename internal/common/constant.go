// Package common contains shared constants and sentinel errors used across
// Taiglo client components.
package common

// TokenStorageKey is the metadata key the bearer credential is persisted
// under. Every component that reads the stored credential must use it.
const TokenStorageKey = "taiglo_token"

// AuthorizationHeaderName and BearerScheme form the header attached to
// authenticated backend requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
)
