package resolver

import (
	"slices"
	"strings"
	"sync"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/tree"
)

// Keys naming inheritance references.
const (
	KeyType = "type"
	KeyIs   = "is"
)

// Option is a function that configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger. A nil logger keeps the NopLogger default.
func WithLogger(l loader.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver applies resourceType inheritance and trait composition using a
// Registry. It never modifies the registry or the nodes passed to it: every
// result that differs from its input is a fresh tree.
//
// Fully resolved resourceTypes are memoized, so each is resolved once per
// Resolver no matter how many resources reference it. A Resolver is safe
// for concurrent use.
type Resolver struct {
	registry *Registry
	logger   loader.Logger

	mu       sync.Mutex
	resolved map[string]*tree.Map
	diags    []flaterrors.Diagnostic
}

// New creates a Resolver over reg. A nil reg behaves as an empty registry.
func New(reg *Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = NewRegistry(nil)
	}
	r := &Resolver{
		registry: reg,
		logger:   loader.NopLogger{},
		resolved: make(map[string]*tree.Map),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveResource returns node with its resourceType inheritance applied.
//
// With a single type, the fully resolved template is the base and node's
// own fields are merged on top. With a list, the resolved templates are
// merged together in list order, later ones winning, and node is merged on
// top last. Unregistered names contribute nothing and are recorded as
// diagnostics. A node without a type is returned as is.
//
// A template that reaches itself through its own type chain is reported as
// a *flaterrors.ReferenceError with IsCircular set.
func (r *Resolver) ResolveResource(node *tree.Map) (*tree.Map, error) {
	if !hasRef(node, KeyType) {
		return node, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyTypes(node.Clone(), nil)
}

// ResolveMethod returns node with its traits applied.
//
// Traits named by the method's is list are merged into an empty accumulator
// in declared order, later traits winning, and the method's own fields are
// merged on top last. Unregistered trait names are skipped and recorded as
// diagnostics. A node without traits is returned as is.
func (r *Resolver) ResolveMethod(node *tree.Map) (*tree.Map, error) {
	return r.ResolveResourceMethod(nil, node)
}

// ResolveResourceMethod resolves method as ResolveMethod does, first
// applying the traits the enclosing resource lists in its own is key.
// Method-level traits win over resource-level ones.
func (r *Resolver) ResolveResourceMethod(resource, method *tree.Map) (*tree.Map, error) {
	var names []string
	if v, ok := resource.Get(KeyIs); ok {
		names = refNames(v)
	}
	if v, ok := method.Get(KeyIs); ok {
		names = append(names, refNames(v)...)
	}
	if len(names) == 0 {
		return method, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var acc *tree.Map
	for _, name := range names {
		decl, ok := r.registry.traits.Get(name)
		if !ok {
			r.unregistered(name, "trait", nil)
			continue
		}
		switch decl := decl.(type) {
		case *tree.Map:
			acc = tree.Merge(acc, decl.Clone())
		case nil:
		default:
			r.unregistered(name, "trait", &flaterrors.ReferenceError{
				Ref:     name,
				RefType: "trait",
				Message: "declaration is not a mapping",
			})
		}
	}
	if acc == nil {
		return method, nil
	}
	return tree.Merge(acc, method.Clone()), nil
}

// Diagnostics returns the diagnostics recorded since the last call and
// clears them.
func (r *Resolver) Diagnostics() []flaterrors.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.diags
	r.diags = nil
	return out
}

// applyTypes merges the templates named by node's type key under node.
// node is owned by the caller. stack holds the templates being resolved.
func (r *Resolver) applyTypes(node *tree.Map, stack []string) (*tree.Map, error) {
	v, ok := node.Get(KeyType)
	if !ok {
		return node, nil
	}
	var base *tree.Map
	for _, name := range refNames(v) {
		tmpl, err := r.template(name, stack)
		if err != nil {
			return nil, err
		}
		if tmpl == nil {
			continue
		}
		base = tree.Merge(base, tmpl.Clone())
	}
	if base == nil {
		return node, nil
	}
	return tree.Merge(base, node), nil
}

// template returns the fully resolved resourceType name, or nil when it
// contributes nothing. The result is shared; callers clone it.
func (r *Resolver) template(name string, stack []string) (*tree.Map, error) {
	if slices.Contains(stack, name) {
		return nil, &flaterrors.ReferenceError{
			Ref:        name,
			RefType:    "resourceType",
			Chain:      append(slices.Clone(stack), name),
			IsCircular: true,
		}
	}
	if t, ok := r.resolved[name]; ok {
		return t, nil
	}

	decl, ok := r.registry.resourceTypes.Get(name)
	if !ok {
		r.unregistered(name, "resourceType", nil)
		return nil, nil
	}
	var t *tree.Map
	switch decl := decl.(type) {
	case *tree.Map:
		var err error
		t, err = r.applyTypes(decl.Clone(), append(slices.Clone(stack), name))
		if err != nil {
			return nil, err
		}
	case nil:
	default:
		r.unregistered(name, "resourceType", &flaterrors.ReferenceError{
			Ref:     name,
			RefType: "resourceType",
			Message: "declaration is not a mapping",
		})
		return nil, nil
	}
	r.resolved[name] = t
	r.logger.Debug("resourceType resolved", "name", name)
	return t, nil
}

func (r *Resolver) unregistered(name, refType string, err error) {
	if err == nil {
		err = &flaterrors.ReferenceError{Ref: name, RefType: refType, IsUnregistered: true}
	}
	r.logger.Warn("reference skipped", "kind", refType, "name", name, "error", err.Error())
	r.diags = append(r.diags, flaterrors.Diagnostic{
		Kind: flaterrors.KindUnregistered,
		Ref:  name,
		Err:  err,
	})
}

func hasRef(node *tree.Map, key string) bool {
	v, ok := node.Get(key)
	return ok && v != nil
}

// refNames returns the names a type or is value refers to. A name is a
// string or the key of a mapping carrying parameters, alone or in a
// sequence.
func refNames(v any) []string {
	switch v := v.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case *tree.Map:
		return v.Keys()
	case []any:
		var names []string
		for _, item := range v {
			names = append(names, refNames(item)...)
		}
		return names
	}
	return nil
}
