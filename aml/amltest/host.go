// Package amltest provides a minimal in-memory aml.Host implementation and
// a byte-level AML Builder, both intended for unit tests that drive an
// aml.Evaluator without a real firmware environment.
package amltest

import (
	"fmt"
	"sync"

	"github.com/gopher-aml/machine/aml"
)

// region is one operation region's byte-addressable backing store, keyed by
// (space, offset) on first write/read so tests never need to pre-size it.
type region struct {
	mu   sync.Mutex
	data map[uint64]uint64
}

// Recorder is an in-memory aml.Host: mutexes are no-ops that always
// acquire immediately, regions are backed by per-space maps, and every
// Log/Notify call is appended to a slice the test can assert against.
type Recorder struct {
	mu         sync.Mutex
	clock      uint64
	nextMutex  aml.MutexHandle
	mutexes    map[aml.MutexHandle]bool
	regions    map[aml.RegionSpace]*region
	Logs       []string
	Notifies   []Notification
}

// Notification records one Notify(node, value) call.
type Notification struct {
	Path  string
	Value uint64
}

// NewRecorder returns a ready-to-use Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mutexes: make(map[aml.MutexHandle]bool),
		regions: make(map[aml.RegionSpace]*region),
	}
}

func (r *Recorder) Alloc(n int) []byte { return make([]byte, n) }

func (r *Recorder) Log(level aml.Level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Logs = append(r.Logs, fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...)))
}

// Now returns a monotonically increasing tick count rather than a real
// clock, so tests that exercise the Timer opcode get deterministic output.
func (r *Recorder) Now() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock += 1000
	return r.clock
}

func (r *Recorder) MutexCreate() (aml.MutexHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMutex++
	h := r.nextMutex
	r.mutexes[h] = false
	return h, nil
}

func (r *Recorder) MutexDestroy(h aml.MutexHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mutexes, h)
}

// MutexAcquire always succeeds immediately: the Recorder has no concept of
// contention, so timeout is ignored.
func (r *Recorder) MutexAcquire(h aml.MutexHandle, timeout uint16) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutexes[h] = true
	return true, nil
}

func (r *Recorder) MutexRelease(h aml.MutexHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutexes[h] = false
}

func (r *Recorder) regionFor(space aml.RegionSpace) *region {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regions[space]
	if !ok {
		reg = &region{data: make(map[uint64]uint64)}
		r.regions[space] = reg
	}
	return reg
}

func (r *Recorder) RegionRead(space aml.RegionSpace, offset, length uint64) (uint64, error) {
	reg := r.regionFor(space)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.data[offset], nil
}

func (r *Recorder) RegionWrite(space aml.RegionSpace, offset, length, value uint64) error {
	reg := r.regionFor(space)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	mask := uint64(1)<<length - 1
	if length >= 64 {
		mask = ^uint64(0)
	}
	reg.data[offset] = value & mask
	return nil
}

func (r *Recorder) Notify(node *aml.Node, value uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifies = append(r.Notifies, Notification{Path: node.Path(), Value: value})
}
