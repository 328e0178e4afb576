// Package cli provides the interactive GophSocial command-line client.
//
// It wires configuration, the local session store, the REST client and an
// interactive REPL. A saved session is restored at start-up, a background
// watcher tracks whether the server is reachable, and each command maps to
// one or two API calls.
//
// Posts are addressed by their position in the last listing (feed, mine or
// user <id>). Likes are applied to that listing optimistically and rolled
// back if the server rejects them.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
