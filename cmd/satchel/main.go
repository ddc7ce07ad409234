package main

import (
	"os"
	"strings"

	"satchel-cli/internal/cli"
)

// takesValue maps global flags to whether they consume the next argv token.
var takesValue = map[string]bool{
	"--dir":    true,
	"--format": true,
	"--pretty": false,
}

func isItemID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "item-") && len(s) > len("item-")
}

// rewriteDirectItemLookupArgs makes `satchel <item-id>` behave like
// `satchel items show <item-id>`. Cobra would otherwise treat the id as an
// unknown subcommand. Global flags may precede the id, so the scan looks for
// the first positional token instead of assuming argv[1].
func rewriteDirectItemLookupArgs(argv []string) []string {
	insertAt := -1
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isItemID(argv[i+1]) {
				insertAt = i + 1
			}
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && takesValue[a] {
				i++
			}
			continue
		case isItemID(a):
			insertAt = i
		}
		break
	}
	if insertAt < 0 {
		return argv
	}

	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:insertAt]...)
	out = append(out, "items", "show")
	return append(out, argv[insertAt:]...)
}

func main() {
	os.Args = rewriteDirectItemLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
