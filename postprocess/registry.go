package postprocess

import (
	"reflect"
	"sort"
	"sync"
)

var (
	classMu sync.RWMutex
	classes = make(map[string]reflect.Type)
)

// RegisterClass records the concrete type of v under name so serializers and
// tooling can find a pass type by its class name. Registering a name again
// replaces the earlier type.
func RegisterClass(name string, v any) {
	classMu.Lock()
	defer classMu.Unlock()
	classes[name] = reflect.TypeOf(v)
}

// LookupClass returns the type registered under name.
func LookupClass(name string) (reflect.Type, bool) {
	classMu.RLock()
	defer classMu.RUnlock()
	t, ok := classes[name]
	return t, ok
}

// RegisteredClasses returns every registered class name, sorted.
func RegisteredClasses() []string {
	classMu.RLock()
	defer classMu.RUnlock()
	names := make([]string, 0, len(classes))
	for n := range classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
