// Package functions describes built-in function signatures and resolves
// function calls by name and arity.
//
// The registry is generic over the factory type so the evaluator can attach
// its own node constructors without this package depending on it.
//
// # Example
//
//	reg := functions.NewRegistry[func(args []Expr) (Expr, error)]()
//	_ = reg.Register(functions.Signature{
//	    Name:   "not",
//	    Params: []functions.Param{{Name: "arg", Type: types.TypeItem, Cardinality: types.ZeroOrMore}},
//	    Return: types.TypeBoolean,
//	}, newNot)
package functions

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Param describes one declared parameter.
type Param struct {
	Name        string
	Type        types.Type
	Cardinality types.Cardinality
}

// Signature describes one arity of a function.
type Signature struct {
	Name        string
	Description string
	Params      []Param
	Return      types.Type
}

// Arity returns the number of declared parameters.
func (s Signature) Arity() int { return len(s.Params) }

// String renders the signature as in "matches($input as xs:string*, ...) as xs:boolean".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%s as %s%s", p.Name, p.Type, p.Cardinality)
	}
	b.WriteString(") as ")
	b.WriteString(s.Return.String())
	return b.String()
}

// FunctionDef pairs a signature with the factory that builds calls to it.
type FunctionDef[F any] struct {
	Signature
	Factory F
}

// Registry maps function names to their definitions, one per arity.
//
// Safe for concurrent use by multiple goroutines.
type Registry[F any] struct {
	mu   sync.RWMutex
	defs map[string]map[int]*FunctionDef[F]
}

// NewRegistry creates an empty registry.
func NewRegistry[F any]() *Registry[F] {
	return &Registry[F]{defs: make(map[string]map[int]*FunctionDef[F])}
}

// Register adds a definition. Registering the same name and arity twice is
// an error.
func (r *Registry[F]) Register(sig Signature, factory F) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byArity, ok := r.defs[sig.Name]
	if !ok {
		byArity = make(map[int]*FunctionDef[F])
		r.defs[sig.Name] = byArity
	}
	if _, dup := byArity[sig.Arity()]; dup {
		return fmt.Errorf("function %s#%d already registered", sig.Name, sig.Arity())
	}
	byArity[sig.Arity()] = &FunctionDef[F]{Signature: sig, Factory: factory}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[F]) MustRegister(sig Signature, factory F) {
	if err := r.Register(sig, factory); err != nil {
		panic(err)
	}
}

// Lookup resolves a call. Unknown names and arities yield an XPST0017 error.
func (r *Registry[F]) Lookup(name string, arity int) (*FunctionDef[F], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byArity, ok := r.defs[name]
	if !ok {
		return nil, types.Errorf(types.ErrUnknownFunction, "unknown function %s()", name)
	}
	def, ok := byArity[arity]
	if !ok {
		return nil, types.Errorf(types.ErrUnknownFunction,
			"function %s() does not accept %d arguments (accepted: %s)", name, arity, arities(byArity))
	}
	return def, nil
}

// Signatures returns every registered signature of name, ordered by arity.
func (r *Registry[F]) Signatures(name string) []Signature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sigs []Signature
	for _, def := range r.defs[name] {
		sigs = append(sigs, def.Signature)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Arity() < sigs[j].Arity() })
	return sigs
}

// Names returns the registered function names in sorted order.
func (r *Registry[F]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func arities[F any](byArity map[int]*FunctionDef[F]) string {
	ns := make([]int, 0, len(byArity))
	for n := range byArity {
		ns = append(ns, n)
	}
	sort.Ints(ns)
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
