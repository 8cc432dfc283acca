package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/source"
	"github.com/erraggy/specflat/tree"
)

// IncludeTag is the YAML tag marking an inclusion.
const IncludeTag = "!include"

// Document is a fully loaded document: every include has been spliced in.
type Document struct {
	// ID is the resolved identifier of the entry document
	ID string
	// Root is the document tree
	Root *tree.Map
	// Diagnostics lists degraded includes in declaration order
	Diagnostics []flaterrors.Diagnostic
	// IDs lists every document read, entry first, in declaration order
	IDs []string
}

// Loader reads documents through a Source and resolves their includes.
// A Loader is safe for concurrent use; documents are fetched once per
// Loader through its cache.
type Loader struct {
	cache       *source.Cache
	logger      Logger
	maxDepth    int
	concurrency int
}

// New creates a Loader reading from src.
func New(src source.Source, opts ...Option) (*Loader, error) {
	if src == nil {
		return nil, &flaterrors.ConfigError{Option: "source", Message: "source cannot be nil"}
	}
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("loader: invalid options: %w", err)
	}
	return &Loader{
		cache:       source.NewCache(src),
		logger:      cfg.logger,
		maxDepth:    cfg.maxIncludeDepth,
		concurrency: cfg.concurrency,
	}, nil
}

// Cache returns the document cache shared by all loads of l.
func (l *Loader) Cache() *source.Cache {
	return l.cache
}

// Load reads the entry document ref, resolves every include, and returns
// the resulting tree. ref is resolved by the source as if referenced from
// the working directory.
//
// Missing or malformed include targets are reported as Diagnostics. Errors
// are returned only when the entry document cannot be loaded
// (*flaterrors.RootLoadError), an include chain is cyclic or too deep, or
// ctx is done.
func (l *Loader) Load(ctx context.Context, ref string) (*Document, error) {
	id, err := l.cache.Resolve("", ref)
	if err != nil {
		return nil, &flaterrors.RootLoadError{ID: ref, Cause: err}
	}
	doc, err := l.cache.Fetch(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &flaterrors.RootLoadError{ID: id, Cause: err}
	}
	return l.loadRoot(ctx, id, doc.Text)
}

// LoadBytes parses data as the entry document. Includes are resolved
// relative to base, which need not exist; an empty base means the working
// directory.
func (l *Loader) LoadBytes(ctx context.Context, base string, data []byte) (*Document, error) {
	return l.loadRoot(ctx, base, source.Decode(data))
}

func (l *Loader) loadRoot(ctx context.Context, id, text string) (*Document, error) {
	node, err := parseYAML(id, text)
	if err != nil {
		return nil, &flaterrors.RootLoadError{ID: id, Cause: err}
	}
	out, err := l.build(ctx, includeCtx{base: id, chain: []string{id}}, node)
	if err != nil {
		var parseErr *flaterrors.ParseError
		if errors.As(err, &parseErr) {
			return nil, &flaterrors.RootLoadError{ID: id, Cause: err}
		}
		return nil, err
	}
	root, ok := out.value.(*tree.Map)
	if !ok {
		return nil, &flaterrors.RootLoadError{
			ID:      id,
			Message: fmt.Sprintf("document root is %s, not a mapping", describe(out.value)),
		}
	}

	ids := []string{}
	if id != "" {
		ids = append(ids, id)
	}
	for _, child := range out.ids {
		if !slices.Contains(ids, child) {
			ids = append(ids, child)
		}
	}
	l.logger.Debug("document loaded",
		"id", id,
		"documents", len(ids),
		"diagnostics", len(out.diags))

	return &Document{ID: id, Root: root, Diagnostics: out.diags, IDs: ids}, nil
}

// includeCtx is the position of a document in the include graph. It is
// passed by value so sibling includes never share it.
type includeCtx struct {
	// base is the identifier of the including document
	base string
	// chain lists the identifiers from the entry document to base
	chain []string
}

func (ic includeCtx) child(id string) includeCtx {
	chain := make([]string, len(ic.chain), len(ic.chain)+1)
	copy(chain, ic.chain)
	return includeCtx{base: id, chain: append(chain, id)}
}

// loaded is the value produced for one document or include, along with what
// loading it reported.
type loaded struct {
	value any
	diags []flaterrors.Diagnostic
	ids   []string
}

// build resolves every include of a parsed document, then converts it.
func (l *Loader) build(ctx context.Context, ic includeCtx, root *yaml.Node) (loaded, error) {
	refs := collectIncludes(root, nil)
	results := make([]loaded, len(refs))
	if err := l.includeAll(ctx, ic, refs, results); err != nil {
		return loaded{}, err
	}

	conv := &converter{
		id:        ic.base,
		includes:  make(map[*yaml.Node]any, len(refs)),
		used:      make(map[*yaml.Node]bool),
		expanding: make(map[*yaml.Node]bool),
	}
	var out loaded
	for i, n := range refs {
		conv.includes[n] = results[i].value
		out.diags = append(out.diags, results[i].diags...)
		out.ids = append(out.ids, results[i].ids...)
	}
	v, err := conv.convert(root)
	if err != nil {
		return loaded{}, err
	}
	out.value = v
	return out, nil
}

// includeAll loads the include targets refs into results, index for index.
func (l *Loader) includeAll(ctx context.Context, ic includeCtx, refs []*yaml.Node, results []loaded) error {
	if l.concurrency <= 1 || len(refs) < 2 {
		for i, n := range refs {
			r, err := l.include(ctx, ic, n)
			if err != nil {
				return err
			}
			results[i] = r
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, n := range refs {
		g.Go(func() error {
			r, err := l.include(gctx, ic, n)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	return g.Wait()
}

// include loads the target of one include node.
func (l *Loader) include(ctx context.Context, ic includeCtx, n *yaml.Node) (loaded, error) {
	if err := ctx.Err(); err != nil {
		return loaded{}, err
	}
	ref := strings.TrimSpace(n.Value)
	if ref == "" {
		return l.degrade(flaterrors.Diagnostic{
			Kind: flaterrors.KindUnresolved,
			From: ic.base,
			Err:  &flaterrors.ParseError{ID: ic.base, Line: n.Line, Message: "empty include reference"},
		}, nil), nil
	}

	id, err := l.cache.Resolve(ic.base, ref)
	if err != nil {
		return l.degrade(flaterrors.Diagnostic{
			Kind: flaterrors.KindUnresolved,
			Ref:  ref,
			From: ic.base,
			Err:  err,
		}, nil), nil
	}
	if slices.Contains(ic.chain, id) {
		return loaded{}, &flaterrors.ReferenceError{
			Ref:        ref,
			RefType:    "include",
			Chain:      append(slices.Clone(ic.chain), id),
			IsCircular: true,
		}
	}
	if len(ic.chain) > l.maxDepth {
		return loaded{}, &flaterrors.ResourceLimitError{
			ResourceType: "include_depth",
			Limit:        int64(l.maxDepth),
			Actual:       int64(len(ic.chain)),
			Message:      id,
		}
	}

	doc, err := l.cache.Fetch(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return loaded{}, ctxErr
		}
		kind := flaterrors.KindFetch
		if errors.Is(err, flaterrors.ErrNotFound) {
			kind = flaterrors.KindNotFound
		}
		return l.degrade(flaterrors.Diagnostic{Kind: kind, Ref: ref, ID: id, From: ic.base, Err: err}, nil), nil
	}

	malformed := func(err error) loaded {
		r := l.degrade(flaterrors.Diagnostic{
			Kind: flaterrors.KindMalformed,
			Ref:  ref,
			ID:   id,
			From: ic.base,
			Err:  err,
		}, doc.Text)
		r.ids = []string{id}
		return r
	}

	switch source.Ext(id) {
	case ".raml", ".yaml", ".yml":
		node, err := parseYAML(id, doc.Text)
		if err != nil {
			return malformed(err), nil
		}
		out, err := l.build(ctx, ic.child(id), node)
		if err != nil {
			var parseErr *flaterrors.ParseError
			if errors.As(err, &parseErr) && parseErr.ID == id {
				return malformed(err), nil
			}
			return loaded{}, err
		}
		out.ids = append([]string{id}, out.ids...)
		l.logger.Debug("include resolved", "ref", ref, "id", id, "from", ic.base)
		return out, nil

	case ".json":
		v, err := decodeJSON(id, doc.Text)
		if err != nil {
			return malformed(err), nil
		}
		l.logger.Debug("include resolved", "ref", ref, "id", id, "from", ic.base)
		return loaded{value: v, ids: []string{id}}, nil

	default:
		l.logger.Debug("include resolved as text", "ref", ref, "id", id, "from", ic.base)
		return loaded{value: doc.Text, ids: []string{id}}, nil
	}
}

// degrade records d and returns value in place of the include.
func (l *Loader) degrade(d flaterrors.Diagnostic, value any) loaded {
	attrs := []any{"kind", string(d.Kind), "ref", d.Ref, "from", d.From}
	if d.Err != nil {
		attrs = append(attrs, "error", d.Err.Error())
	}
	l.logger.Warn("include degraded", attrs...)
	return loaded{value: value, diags: []flaterrors.Diagnostic{d}}
}

func parseYAML(id, text string) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, &flaterrors.ParseError{ID: id, Message: "invalid YAML", Cause: err}
	}
	return &node, nil
}

// collectIncludes appends every include node under n in document order.
// Alias nodes are not followed; their anchors are visited where declared.
func collectIncludes(n *yaml.Node, acc []*yaml.Node) []*yaml.Node {
	if n == nil {
		return acc
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == IncludeTag {
			acc = append(acc, n)
		}
	case yaml.DocumentNode, yaml.SequenceNode, yaml.MappingNode:
		for _, c := range n.Content {
			acc = collectIncludes(c, acc)
		}
	}
	return acc
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "empty"
	case []any:
		return "a sequence"
	case string:
		return "a string"
	default:
		return fmt.Sprintf("a %T", v)
	}
}
