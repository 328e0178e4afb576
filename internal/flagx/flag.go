// Package flagx contains helpers for picking a few bootstrap flags
// (config file, env file) out of os.Args before the full flag set is known.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "CONFIG"

// FilterArgs keeps only the flags listed in allowedFlags (and their values)
// from args. Both "-c conf.json" and "-c=conf.json" forms are recognised.
// A following token that starts with "-" is never taken as a value.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// stringFlag parses a single string flag registered under every name in
// names out of args. The last occurrence wins.
func stringFlag(args []string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
		allowed = append(allowed, "-"+n)
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}

// JsonConfigFlags returns the JSON config path given by -c or -config,
// falling back to the CONFIG environment variable. Empty means no file.
func JsonConfigFlags() string {
	if v := stringFlag(os.Args[1:], "config", "c"); v != "" {
		return v
	}
	return os.Getenv(ConfigEnvVar)
}

// EnvFileFlag returns the dotenv file path given by -env-file, or def.
func EnvFileFlag(def string) string {
	if v := stringFlag(os.Args[1:], "env-file"); v != "" {
		return v
	}
	return def
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
