package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func taskIn(product string) *Task {
	origin := &Area{Product: MustName(product), Name: Origin, Exclusive: true}
	somewhere := &Area{Product: MustName(product), Name: Unknown}
	somewhen := &Version{Product: MustName(product), Name: Unknown}
	p := &Product{Name: MustName(product), Origin: origin, Somewhere: somewhere, Somewhen: somewhen}
	task := &Task{
		Product: p,
		Serial:  1,
		Gist:    MustGist("something is off"),
		Motive:  Defect,
		Purpose: Modification,
		Status:  Unsolved,
		Area:    somewhere,
		Version: somewhen,
	}
	task.Rev = 1
	return task
}

func TestTask_IsConcluded(t *testing.T) {
	task := taskIn("prod")
	assert.False(t, task.IsConcluded())
	for _, s := range []Status{Absolved, Resolved, Dissolved} {
		task.Status = s
		assert.True(t, task.IsConcluded())
	}
}

func TestTask_Involved(t *testing.T) {
	task := taskIn("prod")
	task.Marked = NamesOf(MustName("a"), MustName("b"))
	task.Started = NamesOf(MustName("c"))
	assert.Equal(t, 3, task.Involved())
}

func TestTask_HeatUpBounded(t *testing.T) {
	task := taskIn("prod")
	for i := 0; i < 150; i++ {
		task.HeatUp(int64(i))
	}
	assert.Len(t, task.Heat, 100, "heat series is bounded")
	assert.Equal(t, int64(50), task.Heat[0], "oldest instants fall off first")
	assert.Equal(t, int64(149), task.Heat[99])
}

func TestTask_Temperature(t *testing.T) {
	task := taskIn("prod")
	now := int64(aDay * 10)
	task.HeatUp(now - 2*aDay)
	task.HeatUp(now - aDay - 1)
	task.HeatUp(now - 3600000)
	task.HeatUp(now)
	assert.Equal(t, 2, task.Temperature(now), "only the last day counts")
}

func TestTask_CloneIsIndependent(t *testing.T) {
	task := taskIn("prod")
	task.Marked = NamesOf(MustName("a"))
	task.HeatUp(1)

	c := task.Clone()
	c.Marked = c.Marked.Add(MustName("b"))
	c.Heat[0] = 99

	assert.Equal(t, 1, task.Marked.Count())
	assert.Equal(t, int64(1), task.Heat[0])
	assert.Same(t, task.Product, c.Product, "referenced entities are shared")
}
