// Package signalcoord installs the shell's three signal handlers
// (child-status, interrupt, stop) and drives the job table's reaper
// loop.
package signalcoord

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/ant0ine/gosh/internal/job"
)

// Coordinator owns the OS signal channel and the goroutine that drains
// it. This is the only background goroutine besides the main REPL loop.
type Coordinator struct {
	table  *job.Table
	sigCh  chan os.Signal
	stopCh chan struct{}
}

// New returns a Coordinator bound to table. Call Start to begin handling
// signals.
func New(table *job.Table) *Coordinator {
	return &Coordinator{
		table:  table,
		sigCh:  make(chan os.Signal, 8),
		stopCh: make(chan struct{}),
	}
}

// Start installs the SIGCHLD/SIGINT/SIGTSTP handlers and launches the
// coordinator goroutine. Interrupted syscalls are already retried by the
// runtime, so no explicit SA_RESTART handling is needed.
func (c *Coordinator) Start() {
	// unix.Signal is a type alias for syscall.Signal, so these constants
	// are directly usable with os/signal.Notify.
	signal.Notify(c.sigCh, unix.SIGCHLD, unix.SIGINT, unix.SIGTSTP)
	go c.loop()
}

// Stop stops signal delivery and terminates the coordinator goroutine.
func (c *Coordinator) Stop() {
	signal.Stop(c.sigCh)
	close(c.stopCh)
}

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.stopCh:
			return
		case sig := <-c.sigCh:
			switch sig {
			case unix.SIGCHLD:
				c.reap()
			case unix.SIGINT:
				c.forward(unix.SIGINT)
			case unix.SIGTSTP:
				c.forward(unix.SIGTSTP)
			}
		}
	}
}

// reap drains every completed or stopped child with a non-blocking,
// stop-reporting wait covering all of this process's children, updating
// the owning job slot for each one.
func (c *Coordinator) reap() {
	c.table.Lock()
	defer c.table.Unlock()

	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}

		switch {
		case status.Exited(), status.Signaled():
			c.table.ReapExited(pid)
		case status.Stopped():
			c.table.MarkStopped(pid)
		}
	}
}

// forward sends sig to the foreground job's entire process group (the
// negated pgid), if one exists. Background jobs are not reachable from
// the keyboard.
func (c *Coordinator) forward(sig unix.Signal) {
	c.table.Lock()
	fg := c.table.Foreground()
	var pgid int
	if fg != nil {
		pgid = fg.Pgid
	}
	c.table.Unlock()

	if pgid != 0 {
		_ = unix.Kill(-pgid, sig)
	}
}

// Stop sends an unignorable stop to pgid's entire process group, used by
// the "stop" builtin.
func Stop(pgid int) error {
	return unix.Kill(-pgid, unix.SIGSTOP)
}

// Continue sends SIGCONT to pgid's entire process group, used by fg/bg.
func Continue(pgid int) error {
	return unix.Kill(-pgid, unix.SIGCONT)
}

// Kill sends SIGKILL to pgid's entire process group, used to clean up
// already-spawned stages after a mid-pipeline spawn failure.
func Kill(pgid int) error {
	return unix.Kill(-pgid, unix.SIGKILL)
}

// Drain performs a blocking wait for every pid, used after Kill to avoid
// leaving zombies when a pipeline's spawn is aborted partway through.
func Drain(pids []int) {
	for _, pid := range pids {
		var status unix.WaitStatus
		_, _ = unix.Wait4(pid, &status, 0, nil)
	}
}
