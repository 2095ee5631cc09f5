package build

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/sourcepath/pkg/depgraph"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/observability"
	"github.com/matzehuels/sourcepath/pkg/searchpath"
	"github.com/matzehuels/sourcepath/pkg/source"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Unit is a discovered unit.
type Unit struct {
	Name        unit.Name
	Location    searchpath.Location
	Source      *source.File // nil for precompiled units
	Refs        []unit.Name  // references that resolved to units, in source order
	Compiled    bool
	Precompiled bool
	Artifact    string // output path once compiled

	data []byte
}

// Plan is the outcome of discovery: the units a build would compile and the
// graph of references between them.
type Plan struct {
	Units []*Unit
	Graph *depgraph.Graph

	byName map[string]*Unit
}

// Unit returns the discovered unit called name.
func (p *Plan) Unit(name unit.Name) (*Unit, bool) {
	u, ok := p.byName[name.String()]
	return u, ok
}

// Discover runs the discovery pass only. Nothing is compiled or written.
func (d *Driver) Discover(ctx context.Context, entries ...unit.Name) (*Plan, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no entry points given")
	}
	for _, root := range d.opts.SearchPath.Missing() {
		d.log.Debug("search path root missing", "root", root)
	}

	w := &walker{
		d:        d,
		ctx:      ctx,
		plan:     &Plan{Graph: depgraph.New(), byName: make(map[string]*Unit)},
		resolved: make(map[string]bool),
		queued:   make(map[string]bool),
		located:  make(map[string]searchpath.Location),
	}
	for _, e := range entries {
		w.enqueue(job{name: e})
	}
	if err := w.run(); err != nil {
		return nil, err
	}
	return w.plan, nil
}

type job struct {
	name     unit.Name
	referrer unit.Name
}

// walker is the state of one discovery pass: an explicit queue and the set
// of resolved names. The resolved check is what makes cycles terminate.
type walker struct {
	d    *Driver
	ctx  context.Context
	plan *Plan

	queue    []job
	resolved map[string]bool
	queued   map[string]bool
	located  map[string]searchpath.Location
}

func (w *walker) enqueue(j job) {
	id := j.name.String()
	if w.resolved[id] || w.queued[id] {
		return
	}
	w.queued[id] = true
	w.queue = append(w.queue, j)
}

func (w *walker) run() error {
	for len(w.queue) > 0 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		j := w.queue[0]
		w.queue = w.queue[1:]

		id := j.name.String()
		if w.resolved[id] {
			continue
		}
		if err := w.visit(j); err != nil {
			return err
		}
		w.resolved[id] = true
	}
	return nil
}

func (w *walker) visit(j job) error {
	loc, ok, err := w.locate(j.name)
	if err != nil {
		return err
	}
	if !ok {
		return &UnitNotFoundError{Name: j.name, Referrer: j.referrer}
	}

	u := &Unit{Name: j.name, Location: loc}
	node := w.plan.Graph.EnsureNode(j.name.String())
	node.Meta = depgraph.Metadata{
		"kind":        loc.Kind.String(),
		"root":        loc.Root,
		"path":        loc.Path,
		"precompiled": loc.Kind == searchpath.KindArtifact,
	}
	w.plan.Units = append(w.plan.Units, u)
	w.plan.byName[j.name.String()] = u
	observability.Build().OnUnitDiscovered(w.ctx, j.name.String(), loc.Root, loc.Kind == searchpath.KindArtifact)
	w.d.log.Debug("discovered", "unit", j.name, "root", loc.Root, "kind", loc.Kind)

	if loc.Kind == searchpath.KindArtifact {
		u.Precompiled = true
		return nil
	}

	data, err := os.ReadFile(loc.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", loc.Path, err)
	}
	f, err := source.Parse(loc.Path, data)
	if err != nil {
		return err
	}
	if want := j.name.NamespaceString(); f.Namespace != want {
		return &NamespaceMismatchError{Unit: j.name, Path: loc.Path, Expected: want, Actual: f.Namespace}
	}
	u.Source = f
	u.data = data

	refs, err := w.references(j.name, f)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		u.Refs = append(u.Refs, ref)
		w.plan.Graph.EnsureNode(ref.String())
		_ = w.plan.Graph.AddEdge(depgraph.Edge{From: j.name.String(), To: ref.String()})
		w.enqueue(job{name: ref, referrer: j.name})
	}
	return nil
}

// references returns the units f depends on. Single-type imports are
// returned unconditionally, mapped to their enclosing unit when they name a
// nested type, and fail later if missing; other references are returned
// only when some root contains them.
func (w *walker) references(self unit.Name, f *source.File) ([]unit.Name, error) {
	var refs []unit.Name
	seen := map[string]bool{self.String(): true}
	add := func(n unit.Name) {
		if id := n.String(); !seen[id] {
			seen[id] = true
			refs = append(refs, n)
		}
	}

	imported := make(map[string]bool)
	for _, imp := range f.Imports {
		n, err := unit.Parse(imp)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "%s: bad import %q", f.Filename, imp)
		}
		imported[n.Simple] = true
		if w.external(n) {
			continue
		}
		target, err := w.importTarget(n)
		if err != nil {
			return nil, err
		}
		add(target)
	}

	namespaces := append([]string{f.Namespace}, f.OnDemand...)
	for _, simple := range f.TypeRefs {
		if imported[simple] || simple == self.Simple {
			continue
		}
		for _, ns := range namespaces {
			n, err := unit.New(ns, simple)
			if err != nil || seen[n.String()] || w.external(n) {
				continue
			}
			ok, err := w.exists(n)
			if err != nil {
				return nil, err
			}
			if ok {
				add(n)
				break
			}
		}
	}

	for _, q := range f.QualifiedRefs {
		n, err := unit.Parse(q)
		if err != nil || seen[n.String()] || w.external(n) {
			continue
		}
		ok, err := w.exists(n)
		if err != nil {
			return nil, err
		}
		if ok {
			add(n)
		}
	}
	return refs, nil
}

// importTarget maps a single-type import to the unit that declares it.
// A nested type such as a.b.Outer.Inner lives in a.b.Outer, so when n itself
// is not found its enclosing types are tried, innermost first. If none
// exists n is returned unchanged and reported missing when visited.
func (w *walker) importTarget(n unit.Name) (unit.Name, error) {
	if ok, err := w.exists(n); err != nil || ok {
		return n, err
	}
	for outer, ok := n.Outer(); ok; outer, ok = outer.Outer() {
		found, err := w.exists(outer)
		if err != nil {
			return n, err
		}
		if found {
			return outer, nil
		}
	}
	return n, nil
}

func (w *walker) external(n unit.Name) bool {
	return n.HasPrefix(w.d.opts.External...)
}

// exists reports whether n is resolved, queued or locatable.
func (w *walker) exists(n unit.Name) (bool, error) {
	id := n.String()
	if w.resolved[id] || w.queued[id] {
		return true, nil
	}
	_, ok, err := w.locate(n)
	return ok, err
}

func (w *walker) locate(n unit.Name) (searchpath.Location, bool, error) {
	id := n.String()
	if loc, ok := w.located[id]; ok {
		return loc, true, nil
	}
	loc, ok, err := w.d.opts.SearchPath.Locate(n, w.d.opts.SourceSuffix, w.d.opts.ArtifactSuffix)
	if err != nil || !ok {
		return loc, ok, err
	}
	w.located[id] = loc
	return loc, true, nil
}
