package main

import (
	"os"
	"strings"

	"associate-os/internal/cli"
	"associate-os/internal/store"
)

func rewriteDirectTaskLookupArgs(argv []string) []string {
	// Convenience: `associate <task-id>` works like `associate tasks show <task-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `associate --dir ... <task-id>`), so we look for
	// the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--config":    true,
		"--format":    true,
		"--log-level": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && store.LooksLikeID(argv[i+1]) {
				return insertShow(argv, i+1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if store.LooksLikeID(a) {
			return insertShow(argv, i)
		}
		return argv
	}
	return argv
}

func insertShow(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:at]...)
	out = append(out, "tasks", "show")
	return append(out, argv[at:]...)
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
