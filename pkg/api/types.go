package api

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// Table is the surface the API needs from a record table. Every
// table.Table instantiation satisfies it.
type Table interface {
	Len() int
	Clear()
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// TableInfo describes one registered table in listings.
type TableInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// Registry holds the named tables the server exposes. The core table
// types are single-threaded by contract, so the registry guards each
// table with its own mutex and handlers go through With.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*entry
}

type entry struct {
	mu sync.Mutex
	t  Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*entry)}
}

// Register adds a named table. Registering a duplicate name is an
// error.
func (r *Registry) Register(name string, t Table) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[name]; exists {
		return fmt.Errorf("table %q already registered", name)
	}
	r.tables[name] = &entry{t: t}
	return nil
}

// With runs fn with exclusive access to the named table.
func (r *Registry) With(name string, fn func(Table) error) error {
	r.mu.RLock()
	e, ok := r.tables[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.t)
}

// List returns info for every registered table, sorted by name.
func (r *Registry) List() []TableInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TableInfo, 0, len(r.tables))
	for name, e := range r.tables {
		e.mu.Lock()
		infos = append(infos, TableInfo{Name: name, Records: e.t.Len()})
		e.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ErrTableNotFound indicates a request named an unregistered table.
var ErrTableNotFound = fmt.Errorf("table not found")
