// Package resolver implements TokenScript's batch dependency resolver (spec
// §4.8): parse every token once, build a dependency graph from the
// references collected during parsing, then drain it in topological order
// using one shared long-lived interpreter so that a token's expression can
// read an already-resolved sibling directly out of the interpreter's
// References map.
//
// This mirrors the teacher's runner.go wiring pattern (one shared
// Environment/Evaluator built once, handed the same reference set across
// many runs) generalized from "run one program" to "drain a batch of
// interdependent token programs, never re-creating the interpreter between
// them."
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/interpreter"
	"github.com/tokenscript-lang/tsi/internal/lexer"
	"github.com/tokenscript-lang/tsi/internal/managers"
	"github.com/tokenscript-lang/tsi/internal/parser"
	"github.com/tokenscript-lang/tsi/internal/values"
)

// ErrorType classifies why a token failed to resolve (spec §4.8).
type ErrorType string

const (
	ErrParse              ErrorType = "parse_error"
	ErrCircularDependency ErrorType = "circular_dependency"
	ErrMissingReference   ErrorType = "missing_reference"
	ErrEvaluation         ErrorType = "evaluation_error"
)

// TokenError records one token's resolution failure without aborting the
// rest of the batch. OriginalValue is the token's source text, retained as
// the fallback value a failing token keeps (spec §4.8, §7: "each failing
// token's final representation retains its original expression as its
// value").
type TokenError struct {
	Name          string
	Type          ErrorType
	Message       string
	OriginalValue string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Type, e.Message)
}

// Result is the outcome of resolving one batch of tokens.
type Result struct {
	Values   map[string]values.Value
	Errors   map[string]*TokenError
	Warnings []string
}

// ToJSON renders res as a single JSON document keyed by token name, resolved
// tokens mapping to their string form and failed tokens to an error object —
// the document shape the CLI's resolve subcommand prints. Built incrementally
// with sjson.SetBytes per name (in the given, caller-determined order) rather
// than a struct marshal, since a resolved token and a failed token project
// onto different shapes at the same key.
func (res *Result) ToJSON(names []string) ([]byte, error) {
	doc := []byte("{}")
	var err error
	for _, name := range names {
		if v, ok := res.Values[name]; ok {
			doc, err = sjson.SetBytes(doc, name, v.String())
		} else if e, ok := res.Errors[name]; ok {
			doc, err = sjson.SetBytes(doc, name, map[string]string{
				"error_type":     string(e.Type),
				"message":        e.Message,
				"original_value": e.OriginalValue,
			})
		} else {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("encoding result for %q: %w", name, err)
		}
	}
	return doc, nil
}

type tokenEntry struct {
	name     string
	source   string
	prog     *ast.Program
	requires map[string]bool
}

// Resolve parses and evaluates every entry in sources (token name -> raw
// TokenScript source), resolving dependency order automatically. Ties in
// resolution order are broken by the iteration order of the names slice,
// which callers must supply in input/insertion order for determinism (spec
// §4.8: "resolution order ties are broken by input insertion order").
func Resolve(names []string, sources map[string]string) *Result {
	return ResolveWithInterpreter(names, sources, interpreter.New(nil, nil, nil))
}

// ResolveWithInterpreter is Resolve with a caller-supplied interpreter, so a
// batch can share pre-registered color/unit/function specs (spec §4.8, §5:
// "Multiple independent batches may run in parallel on separate resolver
// instances with independently cloned managers").
func ResolveWithInterpreter(names []string, sources map[string]string, it *interpreter.Interpreter) *Result {
	res := &Result{
		Values: make(map[string]values.Value),
		Errors: make(map[string]*TokenError),
	}

	entries := make(map[string]*tokenEntry, len(names))
	for _, name := range names {
		src := sources[name]
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || managers.IsUninterpreted(trimmed) {
			// spec §4.8 step 1: uninterpreted-keyword or empty/whitespace
			// bodies are recorded verbatim with no AST and no dependency
			// edges, so they are always immediately ready.
			it.References[name] = values.String{Value: src}
			res.Values[name] = values.String{Value: src}
			continue
		}
		l := lexer.New(src)
		p := parser.New(l)
		prog, err := p.ParseInline()
		if err != nil {
			res.Errors[name] = &TokenError{Name: name, Type: ErrParse, Message: err.Error(), OriginalValue: src}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: parse error: %s", name, err.Error()))
			continue
		}
		if len(l.Errors()) > 0 {
			res.Errors[name] = &TokenError{Name: name, Type: ErrParse, Message: l.Errors()[0].Error(), OriginalValue: src}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: parse error: %s", name, l.Errors()[0].Error()))
			continue
		}
		requires := make(map[string]bool, len(prog.References))
		for ref := range prog.References {
			requires[ref] = true
		}
		if requires[name] {
			// spec §4.8 step 1: "if name is its own dependency, record a
			// circularity warning but keep the edge" — self-reference still
			// blocks scheduling like any other unsatisfied dependency.
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: self-referential (references itself via {%s})", name, name))
		}
		entries[name] = &tokenEntry{name: name, source: src, prog: prog, requires: requires}
	}

	remaining := make(map[string]*tokenEntry, len(entries))
	for name, e := range entries {
		remaining[name] = e
	}

	// No reverse (required-by) index is kept: each round rescans
	// `remaining`, which is simpler and cheap at token-pack scale.
	for {
		progressed := false
		// Iterate `names` (not map order) so ties break by input order.
		for _, name := range names {
			e, ok := remaining[name]
			if !ok {
				continue
			}
			if !allSatisfied(e.requires, entries, res.Errors, it.References) {
				continue
			}
			val, err := it.Run(e.prog)
			if err != nil {
				res.Errors[name] = classify(name, e.source, err)
			} else {
				it.References[name] = val
				res.Values[name] = val
			}
			delete(remaining, name)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	// Whatever is left in `remaining` could not be scheduled: either it
	// depends (directly or transitively) on a name that errored out, or it
	// sits in a dependency cycle. Distinguish the two against the errors
	// recorded while scheduling, so classifying one cycle member here does
	// not turn the next one into a missing_reference.
	failed := make(map[string]*TokenError, len(res.Errors))
	for k, v := range res.Errors {
		failed[k] = v
	}
	for _, name := range names {
		e, ok := remaining[name]
		if !ok {
			continue
		}
		if dependsOnErrored(e, entries, failed, map[string]bool{}) {
			res.Errors[name] = &TokenError{Name: name, Type: ErrMissingReference, Message: "depends on a token that failed to resolve", OriginalValue: e.source}
			continue
		}
		res.Errors[name] = &TokenError{Name: name, Type: ErrCircularDependency, Message: describeCycle(name, entries), OriginalValue: e.source}
	}

	return res
}

// allSatisfied reports whether every name e.requires already has a resolved
// value. An unresolved reference blocks scheduling regardless of whether it
// names a still-pending token, an already-errored one, or an unknown name
// entirely — dependsOnErrored sorts out which of those it was once the
// round-robin scheduler stalls.
func allSatisfied(requires map[string]bool, entries map[string]*tokenEntry, errs map[string]*TokenError, resolved map[string]values.Value) bool {
	for ref := range requires {
		if _, ok := resolved[ref]; !ok {
			return false
		}
	}
	return true
}

func dependsOnErrored(e *tokenEntry, entries map[string]*tokenEntry, errs map[string]*TokenError, seen map[string]bool) bool {
	if seen[e.name] {
		return false
	}
	seen[e.name] = true
	for ref := range e.requires {
		if _, failed := errs[ref]; failed {
			return true
		}
		if dep, ok := entries[ref]; ok {
			if dependsOnErrored(dep, entries, errs, seen) {
				return true
			}
		} else {
			return true // references an unknown token name
		}
	}
	return false
}

func describeCycle(start string, entries map[string]*tokenEntry) string {
	path := []string{start}
	visited := map[string]bool{start: true}
	cur := start
	for {
		e, ok := entries[cur]
		if !ok || len(e.requires) == 0 {
			break
		}
		next := ""
		refs := make([]string, 0, len(e.requires))
		for r := range e.requires {
			refs = append(refs, r)
		}
		sort.Strings(refs)
		for _, r := range refs {
			if _, ok := entries[r]; ok {
				next = r
				break
			}
		}
		if next == "" || visited[next] {
			path = append(path, next)
			break
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	desc := path[0]
	for _, p := range path[1:] {
		desc += " -> " + p
	}
	return "circular dependency: " + desc
}

func classify(name, source string, err error) *TokenError {
	if _, ok := err.(*interpreter.MissingReferenceError); ok {
		return &TokenError{Name: name, Type: ErrMissingReference, Message: err.Error(), OriginalValue: source}
	}
	return &TokenError{Name: name, Type: ErrEvaluation, Message: err.Error(), OriginalValue: source}
}
