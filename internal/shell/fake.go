package shell

import (
	"context"
	"os/exec"
	"sync"
)

// FakeRunner records commands instead of running them.
type FakeRunner struct {
	Stdout string
	Stderr string
	Err    error
	// FakeFn, when set, decides the outcome of each call.
	FakeFn func(args []string) (stdout, stderr string, err error)

	mu    sync.Mutex
	calls [][]string
}

// Run records cmd's arguments and returns the canned outcome.
func (f *FakeRunner) Run(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	args := append([]string(nil), cmd.Args...)
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()

	if f.FakeFn != nil {
		o, e, err := f.FakeFn(args)
		return []byte(o), []byte(e), err
	}
	return []byte(f.Stdout), []byte(f.Stderr), f.Err
}

// Calls returns the argument vectors seen so far.
func (f *FakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}
