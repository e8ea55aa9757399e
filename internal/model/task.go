package model

// Task is a unit of tracked work, numbered by its product's sequence
// counter. Once the status leaves Unsolved it never changes again.
type Task struct {
	Rec

	Product *Product
	Serial  IDN

	Gist    Gist
	Motive  Motive
	Purpose Purpose
	Status  Status

	// Exploitable marks defects whose details should not be public yet.
	Exploitable bool
	// Confirmed is false for anonymous reports until a maintainer
	// confirms them.
	Confirmed bool

	Reporter Name
	Solver   Name
	// Conclusion is the solver's closing summary.
	Conclusion Gist

	Start int64
	End   int64

	Area    *Area
	Version *Version

	// Changeset lists published changes for release tasks.
	Changeset Names

	// Cause is the direct predecessor for forked tasks, Origin the root of
	// the fork chain. Both zero for originally reported tasks.
	Cause  IDN
	Origin IDN

	// Marked holds users queueing the task, Started users working on it.
	// A user is in at most one of the two.
	Marked  Names
	Started Names

	// Heat is the series of recent emphasize instants, oldest first.
	Heat []int64
}

// maxHeatLength bounds the emphasize series; older instants fall off.
const maxHeatLength = 100

func (t *Task) UniqueID() ID { return TaskID(t.Product.Name, t.Serial) }

// Involved is the number of users marked on or working on the task.
func (t *Task) Involved() int { return t.Marked.Count() + t.Started.Count() }

// IsConcluded reports whether the status is terminal.
func (t *Task) IsConcluded() bool { return t.Status != Unsolved }

// HeatUp appends an emphasize instant, dropping the oldest past the bound.
func (t *Task) HeatUp(now int64) {
	if len(t.Heat) >= maxHeatLength {
		t.Heat = append(t.Heat[:0], t.Heat[1:]...)
	}
	t.Heat = append(t.Heat, now)
}

// Temperature is the number of emphasize instants within the day before
// now, a simple recency-weighted popularity signal.
func (t *Task) Temperature(now int64) int {
	n := 0
	for _, h := range t.Heat {
		if now-h <= 24*3600*1000 {
			n++
		}
	}
	return n
}

// Clone returns an independent snapshot. Referenced entities are shared;
// they are cloned by whoever mutates them.
func (t *Task) Clone() *Task {
	c := *t
	c.Changeset = t.Changeset.Clone()
	c.Marked = t.Marked.Clone()
	c.Started = t.Started.Clone()
	if t.Heat != nil {
		c.Heat = make([]int64, len(t.Heat))
		copy(c.Heat, t.Heat)
	}
	return &c
}
