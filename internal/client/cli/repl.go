package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// command is one REPL verb. Commands with auth set are hidden and refused
// while logged out.
type command struct {
	name  string
	usage string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// execIface is the surface runREPL needs. The real App type satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() []command
}

// runREPL reads commands line by line from in and dispatches them until
// "exit"/"quit" or end of input. Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	cmds := make(map[string]command)
	for _, c := range a.commands() {
		cmds[c.name] = c
	}

	for {
		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(a.commands(), a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if c.auth && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := c.run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func helpText(cmds []command, loggedIn bool) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, c := range cmds {
		if c.auth && !loggedIn {
			continue
		}
		b.WriteString("\n  ")
		b.WriteString(c.usage)
	}
	b.WriteString("\n  help\n  exit")
	return b.String()
}
