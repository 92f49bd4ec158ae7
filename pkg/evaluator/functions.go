package evaluator

import (
	"sync"

	"github.com/sandrolain/goxmatch/pkg/functions"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// Factory builds the expression node for a call to a function with the
// given signature. args has exactly sig.Arity() elements.
type Factory func(ev *Evaluator, sig functions.Signature, args []Expression) (Expression, error)

var (
	builtinFunctions     *functions.Registry[Factory]
	builtinFunctionsOnce sync.Once
)

// builtins returns the built-in function registry.
func builtins() *functions.Registry[Factory] {
	builtinFunctionsOnce.Do(func() {
		reg := functions.NewRegistry[Factory]()

		input := functions.Param{Name: "input", Type: types.TypeString, Cardinality: types.ZeroOrMore}
		pattern := functions.Param{Name: "pattern", Type: types.TypeString, Cardinality: types.ExactlyOne}
		flags := functions.Param{Name: "flags", Type: types.TypeString, Cardinality: types.ExactlyOne}

		reg.MustRegister(functions.Signature{
			Name:        "matches",
			Description: "Returns true if $input contains a substring matching the regular expression $pattern.",
			Params:      []functions.Param{input, pattern},
			Return:      types.TypeBoolean,
		}, newMatches)
		reg.MustRegister(functions.Signature{
			Name:        "matches",
			Description: "Returns true if $input contains a substring matching the regular expression $pattern under $flags.",
			Params:      []functions.Param{input, pattern, flags},
			Return:      types.TypeBoolean,
		}, newMatches)
		reg.MustRegister(functions.Signature{
			Name:        "not",
			Description: "Returns the negated effective boolean value of $arg.",
			Params:      []functions.Param{{Name: "arg", Type: types.TypeItem, Cardinality: types.ZeroOrMore}},
			Return:      types.TypeBoolean,
		}, newNot)

		builtinFunctions = reg
	})
	return builtinFunctions
}

// Builtins lists the signatures of the built-in functions, ordered by name
// and arity.
func Builtins() []functions.Signature {
	reg := builtins()
	var sigs []functions.Signature
	for _, name := range reg.Names() {
		sigs = append(sigs, reg.Signatures(name)...)
	}
	return sigs
}
