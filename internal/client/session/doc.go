// Package session owns the client's authentication state.
//
// A single Manager is created at startup and shared by every consumer. It
// holds the current State and the bearer credential, persists the credential
// through a credentials.Store and notifies subscribers after each transition.
//
// Operations are not fenced against each other. When two of them race, the
// one whose backend response arrives last decides the final state.
package session
