package compiler

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/countersim/internal/ir"
)

var integerLiteral = regexp.MustCompile(`^-?[0-9]+$`)

// ArgError reports arguments that do not match an operation's signature.
type ArgError struct {
	Operation string
	Arg       string
	Message   string
}

func (e *ArgError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: arg %q: %s", e.Operation, e.Arg, e.Message)
}

// ValidateArgs checks args against the named operation: every declared arg
// present, no extra args, and each value unifying with its declared type.
func (c *Contract) ValidateArgs(operation string, args ir.IRObject) error {
	op, ok := c.Spec.Operation(operation)
	if !ok {
		return &ArgError{Operation: operation, Message: "unknown operation"}
	}

	declared := make(map[string]bool, len(op.Args))
	for _, a := range op.Args {
		declared[a.Name] = true
		val, ok := args[a.Name]
		if !ok {
			return &ArgError{Operation: operation, Arg: a.Name, Message: "missing required argument"}
		}
		if err := c.checkType(a.Type, val); err != nil {
			return &ArgError{Operation: operation, Arg: a.Name, Message: err.Error()}
		}
	}

	for _, name := range sortedFieldNames(args) {
		if !declared[name] {
			return &ArgError{Operation: operation, Arg: name, Message: "unknown argument"}
		}
	}
	return nil
}

// checkType unifies a value with the CUE constraint registered for typ.
func (c *Contract) checkType(typ string, val ir.IRValue) error {
	switch typ {
	case "string":
		if _, ok := val.(ir.IRString); !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		return nil
	case "bool":
		if _, ok := val.(ir.IRBool); !ok {
			return fmt.Errorf("expected bool, got %T", val)
		}
		return nil
	}

	schema := c.types.LookupPath(cue.MakePath(cue.Str(typ)))
	if !schema.Exists() {
		return fmt.Errorf("unknown type %q", typ)
	}

	ctx := schema.Context()
	var cv cue.Value
	switch v := val.(type) {
	case ir.IRInt:
		cv = ctx.Encode(int64(v))
	case ir.IRString:
		// Large unsigned values arrive as decimal strings.
		if !integerLiteral.MatchString(string(v)) {
			return fmt.Errorf("%q is not an integer", string(v))
		}
		cv = ctx.CompileString(string(v))
	case ir.IRBool:
		cv = ctx.Encode(bool(v))
	default:
		return fmt.Errorf("unsupported value %T for type %s", val, typ)
	}

	if err := schema.Unify(cv).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("not a valid %s: %v", typ, formatCUEError(err))
	}
	return nil
}

func sortedFieldNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
