// Package memory provides in-process implementations of the storage and face
// collection ports. They back local runs and the workflow tests.
package memory

import (
	"sync"
)

// faults is the per-method error injection shared by the stores
type faults struct {
	mu           sync.RWMutex
	shouldFailOn map[string]error
}

// SetError configures the store to return err from method.
func (f *faults) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shouldFailOn == nil {
		f.shouldFailOn = make(map[string]error)
	}
	f.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (f *faults) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFailOn = make(map[string]error)
}

func (f *faults) checkError(method string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.shouldFailOn[method]
}
