// Package completer provides filesystem-, process-, and job-aware tab
// completion for the gosh shell. It dynamically builds completion
// suggestions for common commands based on the current directory
// contents, running system processes, and the live job table.
package completer

import (
	"fmt"
	"os"
	"strconv"

	"github.com/chzyer/readline"

	"github.com/ant0ine/gosh/internal/job"
)

// Completer adapts gosh's dynamic environment (filesystem, processes,
// and jobs) to the readline.AutoCompleter interface. It generates and
// updates command-specific completion suggestions on each loop
// iteration.
type Completer struct {
	table             *job.Table
	readlineCompleter *readline.PrefixCompleter
}

// New returns a new Completer bound to table, sourcing job-reference
// completions (%1, %2, ...) for fg/bg/stop/kill.
func New(table *job.Table) *Completer {
	return &Completer{table: table, readlineCompleter: readline.NewPrefixCompleter()}
}

// Update rebuilds the completion tree based on the current working
// directory, running processes, and live jobs. It scans files,
// directories, jobs, and processes to provide up-to-date suggestions for
// commands like "cd", "ls", "kill", "fg", "bg", "stop", "rm", "cat", and
// others.
func (c *Completer) Update() {
	entries, err := os.ReadDir(".")
	if err != nil {
		return
	}

	var onlyDirs []readline.PrefixCompleterInterface
	var rmCompleter []readline.PrefixCompleterInterface
	var fileNamesToComplete []readline.PrefixCompleterInterface

	for _, entry := range entries {
		if entry.IsDir() {
			fileNamesToComplete = append(fileNamesToComplete, readline.PcItem(entry.Name()+"/"))
			onlyDirs = append(onlyDirs, readline.PcItem(entry.Name()+"/"))
		} else {
			fileNamesToComplete = append(fileNamesToComplete, readline.PcItem(entry.Name()))
		}
	}

	jobRefs := c.jobRefCompleters()

	var procsToKill []readline.PrefixCompleterInterface
	procsToKill = append(procsToKill, jobRefs...)
	for _, val := range getPIDs() {
		procsToKill = append(procsToKill, readline.PcItem(val))
	}

	rmCompleter = append(rmCompleter, fileNamesToComplete...)
	rmCompleter = append(rmCompleter, readline.PcItem("-rf", fileNamesToComplete...))

	newCompleter := readline.NewPrefixCompleter(
		readline.PcItem("cd", onlyDirs...),
		readline.PcItem("rm", rmCompleter...),
		readline.PcItem("kill", procsToKill...),
		readline.PcItem("fg", jobRefs...),
		readline.PcItem("bg", jobRefs...),
		readline.PcItem("stop", jobRefs...),
		readline.PcItem("ps", fileNamesToComplete...),
		readline.PcItem("ls", fileNamesToComplete...),
		readline.PcItem("cat", fileNamesToComplete...),
		readline.PcItem("cut", fileNamesToComplete...),
		readline.PcItem("vim", fileNamesToComplete...),
		readline.PcItem("grep", fileNamesToComplete...),
		readline.PcItem("echo", fileNamesToComplete...),
	)

	c.readlineCompleter = newCompleter
}

// jobRefCompleters returns a "%N" completion item for every visible job.
func (c *Completer) jobRefCompleters() []readline.PrefixCompleterInterface {
	if c.table == nil {
		return nil
	}

	c.table.Lock()
	defer c.table.Unlock()

	var out []readline.PrefixCompleterInterface
	for _, j := range c.table.ListVisible() {
		out = append(out, readline.PcItem(fmt.Sprintf("%%%d", j.ID)))
	}
	return out
}

// Do delegates the completion logic to the underlying PrefixCompleter.
// It satisfies the readline.AutoCompleter interface.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.readlineCompleter.Do(line, pos)
}

// getPIDs reads the /proc directory to find all currently running
// process IDs. It returns a slice of PID strings, which is used
// to provide completion suggestions for the "kill" command.
func getPIDs() []string {
	proc, _ := os.ReadDir("/proc")
	var pids []string
	for _, entry := range proc {
		if entry.IsDir() {
			name := entry.Name()
			if _, err := strconv.Atoi(name); err == nil {
				pids = append(pids, name)
			}
		}
	}
	return pids
}
