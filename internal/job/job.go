// Package job implements the shell's job table: a fixed-capacity set of
// tracked pipelines with a {Running, Stopped, Done} state machine, an id
// allocator, and pid/pgid bookkeeping. A mutex guards the table in place
// of the blocked-signal critical section a C shell would use.
package job

import (
	"sort"
	"sync"
)

// State is a job's position in the {Running, Stopped, Done} state machine.
type State int

const (
	Running State = iota
	Stopped
	Done
)

// String renders State using the stable names printed in "jobs"
// listings.
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// MaxStages bounds the number of pids tracked per job.
const MaxStages = 16

// Job is one tracked pipeline. A free slot has Pgid == 0 and every other
// field meaningless.
type Job struct {
	ID          int
	Pgid        int
	Pids        [MaxStages]int
	StageCount  int
	DoneCount   int
	State       State
	Background  bool
	CommandText string
}

func (j *Job) free() bool { return j.Pgid == 0 }

// Table is the fixed-capacity job table. The zero value is not usable;
// construct with New.
type Table struct {
	mu     sync.Mutex
	slots  []Job
	nextID int
	wake   chan struct{}
}

// New returns a Table with the given capacity.
func New(capacity int) *Table {
	return &Table{
		slots:  make([]Job, capacity),
		nextID: 1,
		wake:   make(chan struct{}),
	}
}

// Lock and Unlock bracket a critical section that reads or mutates the
// job table. Every caller outside this package that needs a consistent
// view across several operations (the executor's spawn-then-register
// sequence, fg/bg/stop) must hold the lock for the whole sequence. This
// is what closes the race between registering a pipeline and the reaper
// observing its children exit.
func (t *Table) Lock()   { t.mu.Lock() }
func (t *Table) Unlock() { t.mu.Unlock() }

// broadcast wakes every foreground waiter selecting on WakeChan. Callers
// must hold the lock.
func (t *Table) broadcast() {
	close(t.wake)
	t.wake = make(chan struct{})
}

// WakeChan returns the channel that closes on the table's next mutation.
// Callers must hold the lock to read it, then may select on it unlocked.
func (t *Table) WakeChan() <-chan struct{} {
	return t.wake
}

// Add registers a new job and returns its assigned id (0 for a hidden
// foreground job). Caller must hold the lock. Returns ok=false if the
// table is full.
func (t *Table) Add(pgid int, pids []int, stageCount int, state State, background bool, commandText string) (id int, ok bool) {
	for i := range t.slots {
		if !t.slots[i].free() {
			continue
		}

		if background {
			id = t.nextID
			t.nextID++
		}

		slot := &t.slots[i]
		slot.ID = id
		slot.Pgid = pgid
		slot.StageCount = stageCount
		slot.DoneCount = 0
		slot.State = state
		slot.Background = background
		slot.CommandText = commandText
		for j := 0; j < stageCount && j < MaxStages; j++ {
			slot.Pids[j] = pids[j]
		}

		t.broadcast()
		return id, true
	}
	return 0, false
}

// Remove frees the slot owning pgid. Caller must hold the lock.
func (t *Table) Remove(pgid int) {
	for i := range t.slots {
		if t.slots[i].Pgid == pgid {
			t.slots[i] = Job{}
			return
		}
	}
}

// FindByPgid returns a pointer to the live slot for pgid, or nil. The
// pointer is only valid while the lock is held.
func (t *Table) FindByPgid(pgid int) *Job {
	for i := range t.slots {
		if t.slots[i].Pgid == pgid {
			return &t.slots[i]
		}
	}
	return nil
}

// FindByID returns a pointer to the live slot with the given user-visible
// id, or nil.
func (t *Table) FindByID(id int) *Job {
	for i := range t.slots {
		if t.slots[i].Pgid != 0 && t.slots[i].ID == id {
			return &t.slots[i]
		}
	}
	return nil
}

// FindByPid returns the slot owning pid and the pid's stage index within
// it, or (nil, -1).
func (t *Table) FindByPid(pid int) (*Job, int) {
	for i := range t.slots {
		if t.slots[i].Pgid == 0 {
			continue
		}
		for s := 0; s < t.slots[i].StageCount; s++ {
			if t.slots[i].Pids[s] == pid {
				return &t.slots[i], s
			}
		}
	}
	return nil, -1
}

// Foreground returns the unique slot that is the live foreground job
// (pgid set, not background, Running), or nil.
func (t *Table) Foreground() *Job {
	for i := range t.slots {
		j := &t.slots[i]
		if j.Pgid != 0 && !j.Background && j.State == Running {
			return j
		}
	}
	return nil
}

// Resolve implements the %N / pid / "current job" reference grammar used
// by fg/bg/stop/kill. ref == "" means "current job": the live slot with
// the largest id.
func (t *Table) Resolve(ref string) *Job {
	if ref == "" {
		var last *Job
		for i := range t.slots {
			j := &t.slots[i]
			if j.Pgid == 0 {
				continue
			}
			if last == nil || j.ID > last.ID {
				last = j
			}
		}
		return last
	}

	if len(ref) > 0 && ref[0] == '%' {
		id := atoiSafe(ref[1:])
		return t.FindByID(id)
	}

	pid := atoiSafe(ref)
	return t.FindByPgid(pid)
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	if s == "" {
		return -1
	}
	return n
}

// Snapshot is a caller-owned, lock-free copy of one slot, safe to use
// after Unlock (e.g. while printing "jobs" output).
type Snapshot = Job

// ListVisible returns a snapshot of every non-free slot with ID > 0,
// sorted by ID, for the "jobs" builtin. Caller must hold the lock.
func (t *Table) ListVisible() []Snapshot {
	var out []Snapshot
	for i := range t.slots {
		if t.slots[i].Pgid != 0 && t.slots[i].ID > 0 {
			out = append(out, t.slots[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReapExited marks stage s of the job owning pid as exited/signaled,
// advancing DoneCount and flipping State to Done once every stage has
// been reaped. Caller must hold the lock.
func (t *Table) ReapExited(pid int) {
	j, s := t.FindByPid(pid)
	if j == nil {
		return
	}
	j.Pids[s] = 0
	j.DoneCount++
	if j.DoneCount >= j.StageCount {
		j.State = Done
	}
	t.broadcast()
}

// MarkStopped transitions the job owning pid to Stopped, flips it to
// background, and assigns it an id if it was hidden. Caller must hold
// the lock.
func (t *Table) MarkStopped(pid int) {
	j, _ := t.FindByPid(pid)
	if j == nil {
		return
	}
	j.State = Stopped
	j.Background = true
	if j.ID == 0 {
		j.ID = t.nextID
		t.nextID++
	}
	t.broadcast()
}
