package testutil

import (
	"sync"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
)

// Call is one mutating call seen by RecordingOps.
type Call struct {
	Op   string
	Src  string
	Dst  string
	Path string
}

// RecordingOps passes every call through to Inner and records the
// mutating ones.
type RecordingOps struct {
	Inner cfgsync.FileOps

	mu    sync.Mutex
	calls []Call
}

// NewRecordingOps wraps inner.
func NewRecordingOps(inner cfgsync.FileOps) *RecordingOps {
	return &RecordingOps{Inner: inner}
}

func (r *RecordingOps) IsFile(path string) bool    { return r.Inner.IsFile(path) }
func (r *RecordingOps) IsDir(path string) bool     { return r.Inner.IsDir(path) }
func (r *RecordingOps) IsSymlink(path string) bool { return r.Inner.IsSymlink(path) }
func (r *RecordingOps) Exists(path string) bool    { return r.Inner.Exists(path) }

func (r *RecordingOps) Copy(src, dst string) error {
	r.record(Call{Op: "copy", Src: src, Dst: dst})
	return r.Inner.Copy(src, dst)
}

func (r *RecordingOps) Delete(path string) error {
	r.record(Call{Op: "delete", Path: path})
	return r.Inner.Delete(path)
}

// Calls returns the mutating calls in order.
func (r *RecordingOps) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// Count returns how many calls of op were made.
func (r *RecordingOps) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (r *RecordingOps) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// ScriptedConfirmer answers from a fixed list, then falls back to
// Default, and remembers every question.
type ScriptedConfirmer struct {
	Answers []bool
	Default bool
	Err     error

	Questions []string
}

// Confirm records question and returns the next scripted answer.
func (s *ScriptedConfirmer) Confirm(question string) (bool, error) {
	s.Questions = append(s.Questions, question)
	if s.Err != nil {
		return false, s.Err
	}
	if len(s.Answers) == 0 {
		return s.Default, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
