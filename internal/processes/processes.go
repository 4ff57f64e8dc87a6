// Package processes holds the executable processes offered by wpsd.
package processes

import (
	"context"
	"fmt"

	"github.com/delta10/wpsd/internal/wps"
)

// Reporter receives progress updates from a running process.
type Reporter interface {
	Progress(percent int, message string)
}

// Process is an executable process. Execute receives the inputs grouped by
// identifier with references already resolved, and returns one value per
// output identifier.
type Process interface {
	Describe() wps.ProcessDescription
	Execute(ctx context.Context, inputs map[string][]wps.Data, r Reporter) (map[string]wps.Data, error)
}

// Registry is the set of processes a server executes.
type Registry struct {
	byID    map[string]Process
	catalog *wps.Catalog
}

func NewRegistry(ps ...Process) (*Registry, error) {
	r := &Registry{byID: make(map[string]Process, len(ps))}
	descs := make([]wps.ProcessDescription, 0, len(ps))
	for _, p := range ps {
		d := p.Describe()
		r.byID[d.Identifier] = p
		descs = append(descs, d)
	}
	catalog, err := wps.NewCatalog(descs...)
	if err != nil {
		return nil, err
	}
	r.catalog = catalog
	return r, nil
}

func (r *Registry) Catalog() *wps.Catalog { return r.catalog }

func (r *Registry) Lookup(identifier string) (wps.ProcessDescription, error) {
	return r.catalog.Lookup(identifier)
}

func (r *Registry) Process(identifier string) (Process, error) {
	p, ok := r.byID[identifier]
	if !ok {
		return nil, &wps.Error{Kind: wps.ErrUnknownProcess, Locator: identifier}
	}
	return p, nil
}

// Builtins returns every built-in process.
func Builtins() []Process {
	return []Process{NewFilter(), NewBoundingBoxMeasure(), NewWait()}
}

// Select returns the built-ins named by ids. No ids selects all of them.
func Select(ids []string) ([]Process, error) {
	all := Builtins()
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]Process, len(all))
	for _, p := range all {
		byID[p.Describe().Identifier] = p
	}
	out := make([]Process, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("no built-in process %s", id)
		}
		out = append(out, p)
	}
	return out, nil
}

// must panics on description errors. Built-in descriptions are static.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func single(inputs map[string][]wps.Data, id string) (wps.Data, bool) {
	values := inputs[id]
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

const xsNamespace = "http://www.w3.org/2001/XMLSchema#"

func xsType(name string) wps.DataType {
	return wps.DataType{Name: "xs:" + name, Reference: xsNamespace + name}
}
