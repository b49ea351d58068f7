package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/countersim/internal/ir"
)

// builtinTypes are type names every contract understands without declaring them.
var builtinTypes = map[string]bool{
	"string": true,
	"bool":   true,
}

// Contract is a compiled contract: its IR spec plus the CUE types used to
// check arguments.
type Contract struct {
	Spec ir.ContractSpec

	types cue.Value
}

// CompileContract parses a CUE contract value, e.g. the value at
// contract.Counter.
func CompileContract(v cue.Value) (*Contract, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &Contract{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		c.Spec.Name = labels[len(labels)-1].String()
	}

	purposeVal := v.LookupPath(cue.ParsePath("purpose"))
	if !purposeVal.Exists() {
		return nil, &CompileError{Field: "purpose", Message: "purpose is required", Pos: v.Pos()}
	}
	purpose, err := purposeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	c.Spec.Purpose = purpose

	c.types = v.LookupPath(cue.ParsePath("types"))

	if c.Spec.Ledger, err = parseStateFields(v, "ledger"); err != nil {
		return nil, err
	}
	if c.Spec.Private, err = parseStateFields(v, "private"); err != nil {
		return nil, err
	}

	if c.Spec.Operations, err = parseOperations(v); err != nil {
		return nil, err
	}
	if len(c.Spec.Operations) == 0 {
		return nil, &CompileError{Field: "operation", Message: "at least one operation is required", Pos: v.Pos()}
	}

	for _, f := range allTypeRefs(c.Spec) {
		if !c.knownType(f.typ) {
			return nil, &CompileError{
				Field:   f.path,
				Message: fmt.Sprintf("unknown type %q", f.typ),
				Pos:     v.Pos(),
			}
		}
	}

	return c, nil
}

// knownType reports whether name is a builtin or declared under types.
func (c *Contract) knownType(name string) bool {
	if builtinTypes[name] {
		return true
	}
	return c.types.Exists() && c.types.LookupPath(cue.MakePath(cue.Str(name))).Exists()
}

func parseStateFields(v cue.Value, section string) ([]ir.StateField, error) {
	fields := []ir.StateField{}

	sectionVal := v.LookupPath(cue.ParsePath(section))
	if !sectionVal.Exists() {
		return fields, nil
	}

	iter, err := sectionVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		typ, err := typeName(iter.Value(), section+"."+iter.Label())
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.StateField{Name: iter.Label(), Type: typ})
	}
	return fields, nil
}

func parseOperations(v cue.Value) ([]ir.OperationSig, error) {
	var ops []ir.OperationSig

	opVal := v.LookupPath(cue.ParsePath("operation"))
	if !opVal.Exists() {
		return ops, nil
	}

	iter, err := opVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		val := iter.Value()
		op := ir.OperationSig{
			Name:       name,
			Visibility: ir.VisibilityPublic,
			Args:       []ir.NamedArg{},
		}

		if visVal := val.LookupPath(cue.ParsePath("visibility")); visVal.Exists() {
			vis, err := visVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if vis != ir.VisibilityPublic && vis != ir.VisibilityPrivate {
				return nil, &CompileError{
					Field:   fmt.Sprintf("operation.%s.visibility", name),
					Message: fmt.Sprintf("must be %q or %q, got %q", ir.VisibilityPublic, ir.VisibilityPrivate, vis),
					Pos:     visVal.Pos(),
				}
			}
			op.Visibility = vis
		}

		if argsVal := val.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
			argsIter, err := argsVal.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for argsIter.Next() {
				typ, err := typeName(argsIter.Value(), fmt.Sprintf("operation.%s.args.%s", name, argsIter.Label()))
				if err != nil {
					return nil, err
				}
				op.Args = append(op.Args, ir.NamedArg{Name: argsIter.Label(), Type: typ})
			}
		}

		outputsVal := val.LookupPath(cue.ParsePath("outputs"))
		if !outputsVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("operation.%s.outputs", name),
				Message: "operation outputs are required",
				Pos:     val.Pos(),
			}
		}
		outIter, err := outputsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for outIter.Next() {
			out, err := parseOutputCase(outIter.Value(), name)
			if err != nil {
				return nil, err
			}
			op.Outputs = append(op.Outputs, out)
		}

		ops = append(ops, op)
	}

	return ops, nil
}

func parseOutputCase(v cue.Value, opName string) (ir.OutputCase, error) {
	caseName, err := v.LookupPath(cue.ParsePath("case")).String()
	if err != nil {
		return ir.OutputCase{}, formatCUEError(err)
	}

	out := ir.OutputCase{Case: caseName, Fields: map[string]string{}}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return out, nil
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return ir.OutputCase{}, formatCUEError(err)
	}
	for iter.Next() {
		typ, err := typeName(iter.Value(), fmt.Sprintf("operation.%s.outputs.%s.%s", opName, caseName, iter.Label()))
		if err != nil {
			return ir.OutputCase{}, err
		}
		out.Fields[iter.Label()] = typ
	}
	return out, nil
}

// typeName reads a type reference, which is written as a string naming a
// builtin or a declared type.
func typeName(v cue.Value, path string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{
			Field:   path,
			Message: "type must be a string naming a declared type",
			Pos:     v.Pos(),
		}
	}
	return s, nil
}

type typeRef struct {
	path string
	typ  string
}

func allTypeRefs(spec ir.ContractSpec) []typeRef {
	var refs []typeRef
	for _, f := range spec.Ledger {
		refs = append(refs, typeRef{"ledger." + f.Name, f.Type})
	}
	for _, f := range spec.Private {
		refs = append(refs, typeRef{"private." + f.Name, f.Type})
	}
	for _, op := range spec.Operations {
		for _, a := range op.Args {
			refs = append(refs, typeRef{fmt.Sprintf("operation.%s.args.%s", op.Name, a.Name), a.Type})
		}
		for _, out := range op.Outputs {
			for _, k := range sortedFieldNames(out.Fields) {
				refs = append(refs, typeRef{fmt.Sprintf("operation.%s.outputs.%s.%s", op.Name, out.Case, k), out.Fields[k]})
			}
		}
	}
	return refs
}

// CompileError is a compilation error with a source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError turns the first CUE error into a positioned CompileError.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
