// Command gosh is the entry point of the gosh interactive shell. It
// takes no command-line arguments, except for a hidden re-exec form the
// executor uses to report a missing command as a real, reapable child
// process (see internal/executor.ReexecFlag).
package main

import (
	"os"

	"github.com/ant0ine/gosh/internal/executor"
	"github.com/ant0ine/gosh/internal/shell"
)

func main() {
	if len(os.Args) >= 3 && os.Args[1] == executor.ReexecFlag {
		executor.ReportMissing(os.Args[2])
		return
	}
	shell.Run()
}
