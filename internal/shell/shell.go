// Package shell contains the core interactive REPL loop: prompt, read a
// line, parse it, and dispatch to either the builtin dispatcher or the
// executor, reporting deferred background-job completions at the top of
// each iteration.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ant0ine/gosh/internal/builtin"
	"github.com/ant0ine/gosh/internal/completer"
	"github.com/ant0ine/gosh/internal/config"
	"github.com/ant0ine/gosh/internal/executor"
	"github.com/ant0ine/gosh/internal/job"
	"github.com/ant0ine/gosh/internal/painter"
	"github.com/ant0ine/gosh/internal/parser"
	"github.com/ant0ine/gosh/internal/prompt"
	"github.com/ant0ine/gosh/internal/signalcoord"
)

// Shell holds the runtime state of the interactive shell.
type Shell struct {
	terminal      *readline.Instance
	painter       painter.Painter
	completer     *completer.Completer
	jobTable      *job.Table
	coordinator   *signalcoord.Coordinator
	descriptors   int
	checkCounter  uint
	checkInterval uint
}

// Run starts the main interactive loop of the shell. It boots the shell,
// then repeatedly announces completed background jobs, prints the
// prompt, reads a line, parses it into a pipeline, and dispatches it.
// Run returns only on EOF; the "quit"/"exit" builtin terminates the
// process directly.
func Run() {
	shell, err := boot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer shell.shutdown()

	for {
		shell.announceCompletedBackgroundJobs()

		promptStr, err := prompt.Update(shell.painter)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		shell.terminal.SetPrompt(promptStr)

		shell.completer.Update()
		shell.terminal.Config.AutoComplete = shell.completer

		line, err := shell.terminal.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("exit")
				return
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		p := parser.Parse(line)
		if p.Err != "" {
			fmt.Fprintln(os.Stderr, "gosh: "+p.Err)
			continue
		}
		if len(p.Stages) == 0 {
			continue
		}

		shell.dispatch(p)
		shell.sysmon()
	}
}

// boot initializes the shell runtime. It loads configuration (falling
// back to defaults on error), creates a readline terminal instance,
// records the baseline number of file descriptors for later leak
// detection, constructs the job table and starts the signal coordinator,
// and initializes the prompt painter and completer. Missing USER or an
// unreadable fd directory are fatal.
func boot() (*Shell, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cfg = config.Default()
	}

	if _, ok := os.LookupEnv("USER"); !ok {
		return nil, errors.New("gosh: boot: USER is not set")
	}

	readlineCfg := &readline.Config{
		HistoryFile:     cfg.Terminal.HistoryFile,
		HistoryLimit:    cfg.Terminal.HistoryLimit,
		InterruptPrompt: cfg.Terminal.InterruptPrompt,
		EOFPrompt:       "\n" + cfg.Terminal.EOFPrompt,
	}

	terminal, err := readline.NewEx(readlineCfg)
	if err != nil {
		return nil, fmt.Errorf("gosh: boot: failed to create new terminal instance: %w", err)
	}

	descriptors, err := os.ReadDir(fmt.Sprintf("/proc/%d/fd", os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("gosh: boot: cannot read fd directory: %w", err)
	}

	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		maxJobs = 10
	}

	jobTable := job.New(maxJobs)
	coordinator := signalcoord.New(jobTable)
	coordinator.Start()

	shell := &Shell{
		terminal:      terminal,
		painter:       painter.NewPainter(cfg.Prompt),
		completer:     completer.New(jobTable),
		jobTable:      jobTable,
		coordinator:   coordinator,
		descriptors:   len(descriptors),
		checkInterval: cfg.Terminal.CheckInterval,
	}

	return shell, nil
}

// shutdown stops the signal coordinator and closes the terminal.
func (shell *Shell) shutdown() {
	shell.coordinator.Stop()
	_ = shell.terminal.Close()
}

// dispatch routes a parsed pipeline to the builtin dispatcher when it is
// a single stage with no redirection and no backgrounding, or to the
// executor otherwise.
func (shell *Shell) dispatch(p parser.Pipeline) {
	commandText := parser.CommandText(p)

	if len(p.Stages) == 1 && !p.HasInFile && !p.HasOutFile && !p.Background && builtin.IsBuiltin(p.Stages[0][0]) {
		if err := builtin.Execute(p.Stages[0], commandText, shell.jobTable, shell.painter); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return
	}

	if err := executor.Run(shell.jobTable, p); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// announceCompletedBackgroundJobs sweeps the job table for background
// jobs that finished since the last prompt and prints the deferred
// completion notification. Completed foreground jobs are already removed
// silently by the executor's/builtin's foreground waiter and never reach
// here.
func (shell *Shell) announceCompletedBackgroundJobs() {
	shell.jobTable.Lock()
	defer shell.jobTable.Unlock()

	for _, j := range shell.jobTable.ListVisible() {
		if j.State == job.Done {
			fmt.Printf("[%d] Done\t\t%s\n", j.ID, j.CommandText)
			shell.jobTable.Remove(j.Pgid)
		}
	}
}

// sysmon checks for a file-descriptor leak every checkInterval
// pipelines. A detected leak is reported to stderr rather than treated
// as fatal: only missing USER and an unreadable cwd/fd directory abort
// the shell, and an fd leak found mid-session does not belong on that
// list.
func (shell *Shell) sysmon() {
	if shell.checkInterval == 0 {
		return
	}

	shell.checkCounter++
	if shell.checkCounter < shell.checkInterval {
		return
	}
	shell.checkCounter = 0

	pid := os.Getpid()
	currDescriptors, err := os.ReadDir(fmt.Sprintf("/proc/%d/fd", pid))
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosh: sysmon: cannot read fd dir:", err)
		return
	}

	if len(currDescriptors) > shell.descriptors {
		var openDescriptors []string
		for _, d := range currDescriptors {
			openDescriptors = append(openDescriptors, d.Name())
		}
		fmt.Fprintf(os.Stderr, "gosh: descriptor leak detected: %d file descriptors still open (PID=%d, open fds=%v)\n",
			len(currDescriptors)-shell.descriptors, pid, openDescriptors)
	}
}
