// Package executor translates a parsed pipeline into a correctly wired
// tree of processes: pipe plumbing, redirection setup, process-group
// assignment, and the foreground/background handoff. Stages are spawned
// with syscall.SysProcAttr{Setpgid: true}, and a duplicate parent-side
// setpgid closes the race where a signal could reach the group before a
// child has joined it.
package executor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/ant0ine/gosh/internal/job"
	"github.com/ant0ine/gosh/internal/parser"
	"github.com/ant0ine/gosh/internal/signalcoord"
)

// ReexecFlag is the hidden argv[1] the shell passes to itself when a
// pipeline stage names a command that cannot be found. Re-executing the
// shell binary itself (rather than failing cmd.Start outright) gives that
// stage a real pid and process-group membership, so the job table and
// the rest of the pipeline observe it exactly like any other stage that
// exits 1, without inventing a process the kernel never created.
const ReexecFlag = "-exec-missing"

// ReportMissing implements the reexec side: print "<name>: command not
// found" and exit 1. Called from cmd/gosh/main.go before the shell boots.
func ReportMissing(name string) {
	fmt.Fprintf(os.Stderr, "%s: command not found\n", name)
	os.Exit(1)
}

// Run spawns pipeline's stages, wires them together, registers the
// resulting job, and either hands off to the foreground waiter or prints
// the background-start notification. table must not be locked by the
// caller.
func Run(table *job.Table, p parser.Pipeline) error {
	n := len(p.Stages)
	if n == 0 {
		return nil
	}
	if n > job.MaxStages {
		return fmt.Errorf("gosh: too many stages")
	}

	pipes := make([][2]*os.File, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			closeAllPipes(pipes[:i])
			return fmt.Errorf("gosh: pipe: %w", err)
		}
		pipes[i] = [2]*os.File{r, w}
	}

	var inFile, outFile *os.File
	if p.HasInFile {
		f, err := os.Open(p.InFile)
		if err != nil {
			closeAllPipes(pipes)
			return fmt.Errorf("gosh: %s: %w", p.InFile, err)
		}
		inFile = f
		defer inFile.Close()
	}
	if p.HasOutFile {
		flags := os.O_WRONLY | os.O_CREATE
		if p.OutAppend {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(p.OutFile, flags, 0644)
		if err != nil {
			closeAllPipes(pipes)
			return fmt.Errorf("gosh: %s: %w", p.OutFile, err)
		}
		outFile = f
		defer outFile.Close()
	}

	table.Lock()

	pids := make([]int, 0, n)
	pgid := 0

	for i, stage := range p.Stages {
		cmd := buildCmd(stage)

		switch {
		case i == 0 && inFile != nil:
			cmd.Stdin = inFile
		case i == 0:
			cmd.Stdin = os.Stdin
		default:
			cmd.Stdin = pipes[i-1][0]
		}

		switch {
		case i == n-1 && outFile != nil:
			cmd.Stdout = outFile
		case i == n-1:
			cmd.Stdout = os.Stdout
		default:
			cmd.Stdout = pipes[i][1]
		}
		cmd.Stderr = os.Stderr

		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

		if err := cmd.Start(); err != nil {
			cleanupFailedSpawn(table, pgid, pids)
			closeAllPipes(pipes)
			table.Unlock()
			return fmt.Errorf("gosh: fork: %w", err)
		}

		if i == 0 {
			pgid = cmd.Process.Pid
		}
		// Duplicate setpgid from the parent closes the race where a
		// later sibling signals this pgid before the child has run far
		// enough to join it itself.
		_ = syscall.Setpgid(cmd.Process.Pid, pgid)

		pids = append(pids, cmd.Process.Pid)
	}

	closeAllPipes(pipes)

	commandText := parser.CommandText(p)
	id, ok := table.Add(pgid, pids, n, job.Running, p.Background, commandText)
	if !ok {
		cleanupFailedSpawn(table, pgid, pids)
		table.Unlock()
		return fmt.Errorf("gosh: too many jobs")
	}

	table.Unlock()

	if p.Background {
		fmt.Printf("[%d] %d\n", id, pgid)
		return nil
	}

	waitForeground(table, pgid)
	return nil
}

// buildCmd resolves stage[0] and, if it cannot be found, rewires the
// command to re-exec the shell itself so it still reports
// "command not found" and exits 1 as a real, reapable child (see
// ReexecFlag). Arguments are trimmed of surrounding whitespace and UTF-8
// non-breaking spaces.
func buildCmd(stage parser.Command) *exec.Cmd {
	args := make([]string, len(stage))
	for i, a := range stage {
		args[i] = trimWhitespace(a)
	}

	if _, err := exec.LookPath(args[0]); err != nil {
		self, selfErr := os.Executable()
		if selfErr != nil {
			self = os.Args[0]
		}
		return exec.Command(self, ReexecFlag, args[0])
	}

	return exec.Command(args[0], args[1:]...)
}

func trimWhitespace(s string) string {
	start := 0
	for start < len(s) {
		if s[start] == ' ' || s[start] == '\t' {
			start++
			continue
		}
		if start+1 < len(s) && s[start] == 0xC2 && s[start+1] == 0xA0 {
			start += 2
			continue
		}
		break
	}

	end := len(s)
	for end > start {
		if s[end-1] == ' ' || s[end-1] == '\t' {
			end--
			continue
		}
		if end-2 >= start && s[end-2] == 0xC2 && s[end-1] == 0xA0 {
			end -= 2
			continue
		}
		break
	}

	return s[start:end]
}

func closeAllPipes(pipes [][2]*os.File) {
	for _, pair := range pipes {
		if pair[0] != nil {
			_ = pair[0].Close()
		}
		if pair[1] != nil {
			_ = pair[1].Close()
		}
	}
}

// cleanupFailedSpawn kills and drains every already-spawned stage's
// process group after a mid-pipeline fork/register failure, so they
// don't linger as zombies or an orphaned group. Caller must hold the
// table lock.
func cleanupFailedSpawn(table *job.Table, pgid int, pids []int) {
	if pgid == 0 || len(pids) == 0 {
		return
	}
	_ = signalcoord.Kill(pgid)
	signalcoord.Drain(pids)
}

// waitForeground blocks until the foreground job owning pgid is no
// longer Running, announcing a stop or silently removing a completed
// job. It wakes immediately on a job-table mutation and at most every
// second otherwise.
func waitForeground(table *job.Table, pgid int) {
	for {
		table.Lock()
		j := table.FindByPgid(pgid)
		if j == nil {
			table.Unlock()
			return
		}
		state := j.State
		commandText := j.CommandText
		id := j.ID
		wake := table.WakeChan()
		table.Unlock()

		switch state {
		case job.Done:
			table.Lock()
			table.Remove(pgid)
			table.Unlock()
			return
		case job.Stopped:
			fmt.Printf("[%d] Stopped\t\t%s\n", id, commandText)
			return
		}

		select {
		case <-wake:
		case <-time.After(time.Second):
		}
	}
}
