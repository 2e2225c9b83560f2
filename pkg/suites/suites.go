// Package suites maps lab-part identifiers to the interactive test cases
// that exercise the program built for that part.
package suites

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ormasoftchile/labcheck/pkg/expect"
)

// Suite returns a fresh table of test cases.
type Suite func() []expect.TestCase

// ErrUnknownSuite is returned by Lookup for an unregistered identifier.
var ErrUnknownSuite = errors.New("unknown test suite")

var (
	mu       sync.RWMutex
	registry = map[string]Suite{}
)

// Register binds id to s, replacing any earlier binding.
func Register(id string, s Suite) {
	mu.Lock()
	defer mu.Unlock()
	registry[id] = s
}

// Lookup returns the suite bound to id.
func Lookup(id string) (Suite, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownSuite, id, idsLocked())
	}
	return s, nil
}

// IDs lists every registered identifier in sorted order.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	return idsLocked()
}

func idsLocked() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cases resolves id and appends extra, in that order.
func Cases(id string, extra []expect.TestCase) ([]expect.TestCase, error) {
	var cases []expect.TestCase
	if id != "" {
		s, err := Lookup(id)
		if err != nil {
			return nil, err
		}
		cases = s()
	}
	return append(cases, extra...), nil
}

func init() {
	Register("sandwich", Sandwich)
	Register("run_p1", Sandwich)
	Register("blackjack", Blackjack)
	Register("run_p2", Blackjack)
}
