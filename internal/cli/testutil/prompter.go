// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ae-kit/tools/internal/prompt"
)

// Question is a prompt shown through FakePrompter.
type Question struct {
	Kind    string // filter, input, confirm, choose, write
	Header  string
	Options []string
	Value   string // placeholder or pre-filled text
}

type answer struct {
	values []string
	text   string
	yes    bool
	keep   bool
	err    error
}

// FakePrompter is a prompt.Prompter that replays scripted answers in order
// and records every question asked.
type FakePrompter struct {
	mu      sync.Mutex
	answers []answer
	asked   []Question
}

var _ prompt.Prompter = (*FakePrompter)(nil)

// NewFakePrompter returns a FakePrompter with no scripted answers.
func NewFakePrompter() *FakePrompter {
	return &FakePrompter{}
}

// Select scripts the next Filter or Choose answer.
func (f *FakePrompter) Select(values ...string) *FakePrompter {
	return f.push(answer{values: values})
}

// Type scripts the next Input or Write answer.
func (f *FakePrompter) Type(text string) *FakePrompter {
	return f.push(answer{text: text})
}

// Keep scripts the next Write to return its pre-filled value unchanged.
func (f *FakePrompter) Keep() *FakePrompter {
	return f.push(answer{keep: true})
}

// Answer scripts the next Confirm answer.
func (f *FakePrompter) Answer(yes bool) *FakePrompter {
	return f.push(answer{yes: yes})
}

// Abort scripts the next prompt of any kind to be aborted.
func (f *FakePrompter) Abort() *FakePrompter {
	return f.push(answer{err: prompt.ErrAborted})
}

func (f *FakePrompter) push(a answer) *FakePrompter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, a)
	return f
}

// Asked returns the questions in the order they were asked.
func (f *FakePrompter) Asked() []Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Question(nil), f.asked...)
}

// Headers returns the header of every question asked.
func (f *FakePrompter) Headers() []string {
	var out []string
	for _, q := range f.Asked() {
		out = append(out, q.Header)
	}
	return out
}

// Remaining reports how many scripted answers were not consumed.
func (f *FakePrompter) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.answers)
}

func (f *FakePrompter) next(q Question) (answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, q)
	if len(f.answers) == 0 {
		return answer{}, fmt.Errorf("unexpected %s prompt %q", q.Kind, q.Header)
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, a.err
}

// Filter implements prompt.Prompter.
func (f *FakePrompter) Filter(_ context.Context, header string, options []string, multi bool) ([]string, error) {
	if len(options) == 0 {
		return nil, prompt.ErrNoOptions
	}
	a, err := f.next(Question{Kind: "filter", Header: header, Options: options})
	if err != nil {
		return nil, err
	}
	if !multi && len(a.values) > 1 {
		return nil, fmt.Errorf("single-select prompt %q answered with %d values", header, len(a.values))
	}
	for _, v := range a.values {
		if !slices.Contains(options, v) {
			return nil, fmt.Errorf("answer %q is not an option of %q", v, header)
		}
	}
	return a.values, nil
}

// Input implements prompt.Prompter.
func (f *FakePrompter) Input(_ context.Context, header, placeholder string) (string, error) {
	a, err := f.next(Question{Kind: "input", Header: header, Value: placeholder})
	if err != nil {
		return "", err
	}
	return a.text, nil
}

// Confirm implements prompt.Prompter.
func (f *FakePrompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	a, err := f.next(Question{Kind: "confirm", Header: message})
	if err != nil {
		return false, err
	}
	return a.yes, nil
}

// Choose implements prompt.Prompter.
func (f *FakePrompter) Choose(_ context.Context, header string, options []string) (string, error) {
	if len(options) == 0 {
		return "", prompt.ErrNoOptions
	}
	a, err := f.next(Question{Kind: "choose", Header: header, Options: options})
	if err != nil {
		return "", err
	}
	if len(a.values) != 1 || !slices.Contains(options, a.values[0]) {
		return "", fmt.Errorf("answer %v is not an option of %q", a.values, header)
	}
	return a.values[0], nil
}

// Write implements prompt.Prompter.
func (f *FakePrompter) Write(_ context.Context, header, value string) (string, error) {
	a, err := f.next(Question{Kind: "write", Header: header, Value: value})
	if err != nil {
		return "", err
	}
	if a.keep {
		return value, nil
	}
	return a.text, nil
}
