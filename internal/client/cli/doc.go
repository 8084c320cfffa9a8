// Package cli provides the interactive command-line client for the auth
// service.
//
// The client keeps its session (email and token pair) in a local SQLite
// file, so a user stays signed in across runs until they log out or the
// refresh token stops being accepted.
//
// Commands: register, login, refresh, logout, validate, profile, delete,
// help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
