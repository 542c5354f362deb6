package framework

import (
	"sort"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Fixtures holds values shared between Steps, keyed by name. Setting an existing name
// overwrites it. It is safe for concurrent use.
type Fixtures struct {
	values map[string]ldvalue.Value
	lock   sync.RWMutex
}

func NewFixtures() *Fixtures {
	return &Fixtures{values: make(map[string]ldvalue.Value)}
}

func (f *Fixtures) Get(key string) (ldvalue.Value, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *Fixtures) Set(key string, value ldvalue.Value) {
	f.lock.Lock()
	f.values[key] = value
	f.lock.Unlock()
}

// Keys returns the fixture names in sorted order.
func (f *Fixtures) Keys() []string {
	f.lock.RLock()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	f.lock.RUnlock()
	sort.Strings(keys)
	return keys
}
