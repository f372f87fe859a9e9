// Package client talks to the Taiglo REST backend.
//
// # Overview
//
//  1. Client is the HTTP client for the backend. The auth calls (Me, Login,
//     Register, UpdateProfile) take the bearer credential explicitly, which
//     matches the backend contract. Every other resource call goes through
//     Do. Do attaches the credential from a TokenSource, normally the session
//     manager, so no caller reads the credential store itself.
//  2. InitDatabase and RunMigrations prepare the local SQLite database that
//     holds the stored credential.
//
// # Error Handling
//
// A request that never completes fails with an error matching ErrNetwork.
// A completed non-2xx response is an *APIError carrying the backend's
// "error" message; errors.Is(err, ErrUnauthorized) holds for 401 and 403.
//
// No retries or timeouts are applied here. Cancel through the context.
package client
