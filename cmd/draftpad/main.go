package main

import (
	"os"
	"strings"

	"draftpad/internal/cli"

	"github.com/google/uuid"
)

func isDraftID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// rewriteDirectEditArgs makes `draftpad <draft-id>` work like `draftpad edit <draft-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first.
func rewriteDirectEditArgs(argv []string) []string {
	valueFlags := map[string]bool{
		"--dir":    true,
		"--locale": true,
		"--format": true,
	}
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isDraftID(argv[i+1]) {
				return insertArgs(argv, i, "edit")
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isDraftID(a):
			return insertArgs(argv, i, "edit")
		default:
			return argv
		}
	}
	return argv
}

func insertArgs(argv []string, at int, extra ...string) []string {
	out := make([]string, 0, len(argv)+len(extra))
	out = append(out, argv[:at]...)
	out = append(out, extra...)
	return append(out, argv[at:]...)
}

func main() {
	os.Args = rewriteDirectEditArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
