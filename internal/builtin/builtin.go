// Package builtin implements the shell's built-in commands: the ones
// that must run in the shell's own process because they mutate its
// state (cd, job control) or merely report on it (help, ps). Job-control
// builtins resolve %N and pid references through the job table.
package builtin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/ant0ine/gosh/internal/external"
	"github.com/ant0ine/gosh/internal/job"
	"github.com/ant0ine/gosh/internal/painter"
	"github.com/ant0ine/gosh/internal/signalcoord"
)

// entry describes one built-in for both dispatch and the "help" listing.
type entry struct {
	name string
	desc string
}

// table is the fixed dispatch table, in listing order.
var table = []entry{
	{"quit", "Exit the shell"},
	{"exit", "Exit the shell"},
	{"cd", "Change the current directory"},
	{"help", "List built-in commands"},
	{"jobs", "List tracked jobs"},
	{"fg", "Bring a job to the foreground"},
	{"bg", "Resume a stopped job in the background"},
	{"stop", "Suspend a job"},
	{"ps", "List processes attached to this terminal"},
	{"kill", "Send SIGTERM to a process or job"},
	{"echo", "Print arguments"},
	{"pwd", "Print the current directory"},
}

// IsBuiltin reports whether name is a registered built-in.
func IsBuiltin(name string) bool {
	for _, e := range table {
		if e.name == name {
			return true
		}
	}
	return false
}

// Execute dispatches command (command[0] is the built-in name) against
// the job table. commandText is the reconstructed text of the built-in's
// own pipeline; no built-in reads it (fg/bg announce the resolved job's
// stored command text). p colors the "jobs" listing when stdout is a
// terminal.
func Execute(command []string, commandText string, jobTable *job.Table, p painter.Painter) error {
	args := command[1:]

	switch command[0] {
	case "quit", "exit":
		return quit()
	case "cd":
		return cd(args)
	case "help":
		return help()
	case "jobs":
		return jobsCmd(jobTable, p)
	case "fg":
		return fg(args, jobTable, commandText)
	case "bg":
		return bg(args, jobTable)
	case "stop":
		return stopCmd(args, jobTable)
	case "ps":
		return processStatus(os.Stdout)
	case "kill":
		return kill(args, jobTable)
	case "echo":
		return echo(args, os.Stdout)
	case "pwd":
		return pwd(os.Stdout)
	}

	return fmt.Errorf("gosh: %s: not a builtin", command[0])
}

func quit() error {
	os.Exit(0)
	return nil
}

func cd(args []string) error {
	var dir string

	switch len(args) {
	case 0:
		dir = os.Getenv("HOME")
	case 1:
		dir = args[0]
	default:
		return errors.New("gosh: cd: too many arguments")
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("gosh: cd: %w", err)
	}
	return nil
}

func help() error {
	fmt.Println("gosh - built-in commands:")
	for _, e := range table {
		fmt.Printf("  %-10s %s\n", e.name, e.desc)
	}
	fmt.Println("Other commands are looked up on PATH.")
	return nil
}

// jobArgRef extracts the optional %N/pid argument shared by fg/bg/stop.
func jobArgRef(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func jobsCmd(t *job.Table, p painter.Painter) error {
	t.Lock()
	defer t.Unlock()

	colorize := external.IsTerminal()
	for _, j := range t.ListVisible() {
		state := j.State.String()
		if colorize {
			state = p.JobState(state, state)
		}
		fmt.Printf("[%d] %d %s\t%s\n", j.ID, j.Pgid, state, j.CommandText)
		if j.State == job.Done {
			t.Remove(j.Pgid)
		}
	}
	return nil
}

func fg(args []string, t *job.Table, _ string) error {
	t.Lock()
	j := t.Resolve(jobArgRef(args))
	if j == nil {
		t.Unlock()
		return errors.New("fg: no such job")
	}

	fmt.Println(j.CommandText)
	j.Background = false
	j.State = job.Running
	pgid := j.Pgid
	t.Unlock()

	if err := signalcoord.Continue(pgid); err != nil {
		return fmt.Errorf("gosh: fg: %w", err)
	}

	waitForeground(t, pgid)
	return nil
}

func bg(args []string, t *job.Table) error {
	t.Lock()
	j := t.Resolve(jobArgRef(args))
	if j == nil {
		t.Unlock()
		return errors.New("bg: no such job")
	}

	j.Background = true
	j.State = job.Running
	id := j.ID
	pgid := j.Pgid
	text := j.CommandText
	t.Unlock()

	if err := signalcoord.Continue(pgid); err != nil {
		return fmt.Errorf("gosh: bg: %w", err)
	}

	fmt.Printf("[%d] %s &\n", id, text)
	return nil
}

func stopCmd(args []string, t *job.Table) error {
	t.Lock()
	j := t.Resolve(jobArgRef(args))
	if j == nil {
		t.Unlock()
		return errors.New("stop: no such job")
	}
	pgid := j.Pgid
	t.Unlock()

	if err := signalcoord.Stop(pgid); err != nil {
		return fmt.Errorf("gosh: stop: %w", err)
	}
	return nil
}

// waitForeground is a thin copy of the executor's foreground wait loop,
// used when fg hands a resumed job back the terminal. internal/executor
// does not export its waiter, so the loop is repeated here as a small,
// self-contained poll.
func waitForeground(t *job.Table, pgid int) {
	for {
		t.Lock()
		j := t.FindByPgid(pgid)
		if j == nil {
			t.Unlock()
			return
		}
		state := j.State
		id := j.ID
		text := j.CommandText
		wake := t.WakeChan()
		t.Unlock()

		switch state {
		case job.Done:
			t.Lock()
			t.Remove(pgid)
			t.Unlock()
			return
		case job.Stopped:
			fmt.Printf("[%d] Stopped\t\t%s\n", id, text)
			return
		}

		select {
		case <-wake:
		case <-time.After(time.Second):
		}
	}
}

func kill(args []string, t *job.Table) error {
	if len(args) < 1 {
		return errors.New("kill: usage: kill pid|%jobid")
	}

	target := args[0]
	if strings.HasPrefix(target, "%") {
		t.Lock()
		j := t.Resolve(target)
		if j == nil {
			t.Unlock()
			return fmt.Errorf("gosh: kill: %s: no such job", target)
		}
		pgid := j.Pgid
		t.Unlock()
		if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
			return fmt.Errorf("gosh: kill: (%d) - operation not permitted", pgid)
		}
		return nil
	}

	pid, err := strconv.Atoi(target)
	if err != nil {
		return fmt.Errorf("gosh: kill: %s: arguments must be process or job IDs", target)
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("gosh: kill: (%d) - operation not permitted", pid)
	}
	return nil
}

func echo(args []string, w io.Writer) error {
	_, err := fmt.Fprintln(w, strings.Join(args, " "))
	return err
}

func pwd(w io.Writer) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("gosh: pwd: %w", err)
	}
	_, err = fmt.Fprintln(w, dir)
	return err
}

// processStatus prints a ps-like listing of processes attached to this
// terminal.
func processStatus(w io.Writer) error {
	path, re, processes, err := psPrep(w)
	if err != nil {
		return fmt.Errorf("gosh: ps: %w", err)
	}

	for _, process := range processes {
		pid := process.Pid()
		cmd := process.Executable()

		link, err := os.Readlink(fmt.Sprintf("/proc/%d/fd/0", pid))
		if err == nil && re.MatchString(link) {
			if _, err := fmt.Fprintf(w, "%7d pts/%-8s 00:00:00 %s\n", pid, filepath.Base(path), cmd); err != nil {
				return fmt.Errorf("write operation failed: %w", err)
			}
		}
	}

	return nil
}

func psPrep(w io.Writer) (string, *regexp.Regexp, []ps.Process, error) {
	path, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to read /proc/self/fd/0: %w", err)
	}

	re := regexp.MustCompile(fmt.Sprintf(`/dev/pts/%s$`, filepath.Base(path)))

	processes, err := ps.Processes()
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get process list: %w", err)
	}

	if _, err := fmt.Fprintln(w, "    PID TTY          TIME CMD"); err != nil {
		return "", nil, nil, fmt.Errorf("write operation failed: %w", err)
	}
	return path, re, processes, nil
}
