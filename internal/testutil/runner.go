package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ae-kit/tools/internal/shell"
)

// FakeRunner is a shell.Runner that records commands instead of running
// them. Responses are matched against the space-joined argv.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []shell.Command
	responses []*response
}

type response struct {
	match string
	out   string
	err   error
	once  bool
	used  bool
}

// NewFakeRunner returns a FakeRunner where every command succeeds with no
// output until told otherwise.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On makes commands whose argv contains match return out and err.
// Earlier registrations take priority.
func (f *FakeRunner) On(match, out string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, out: out, err: err})
	return f
}

// Once is On for a single matching call.
func (f *FakeRunner) Once(match, out string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, out: out, err: err, once: true})
	return f
}

// Run implements shell.Runner.
func (f *FakeRunner) Run(_ context.Context, c shell.Command) error {
	_, err := f.respond(c)
	return err
}

// Output implements shell.Runner.
func (f *FakeRunner) Output(_ context.Context, c shell.Command) (string, error) {
	return f.respond(c)
}

func (f *FakeRunner) respond(c shell.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)

	line := strings.Join(c.Argv(), " ")
	for _, r := range f.responses {
		if r.used || !strings.Contains(line, r.match) {
			continue
		}
		if r.once {
			r.used = true
		}
		return r.out, r.err
	}
	return "", nil
}

// Calls returns the recorded commands.
func (f *FakeRunner) Calls() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.calls...)
}

// Lines returns the recorded commands as space-joined argv strings.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, strings.Join(c.Argv(), " "))
	}
	return lines
}

// LinesFor returns the recorded lines for one program.
func (f *FakeRunner) LinesFor(name string) []string {
	var out []string
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, name+" ") || l == name {
			out = append(out, l)
		}
	}
	return out
}
