package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/countersim/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrPurposeEmpty        = "E101" // purpose is required
	ErrNoOperations        = "E102" // at least one operation required
	ErrOperationNoOutputs  = "E103" // operation must have outputs
	ErrDuplicateName       = "E105" // duplicate operation or state name
	ErrFloatTypeForbidden  = "E106" // float types not allowed
	ErrNoSuccessCase       = "E107" // operation has no Success output
	ErrPrivateOutputFields = "E108" // private operation exposes result fields
	ErrStateOverlap        = "E109" // field declared in both ledger and private state
)

// ValidationError is a semantic problem in a compiled spec.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled spec against the rules CUE cannot express.
// All problems are returned, not just the first.
func Validate(spec ir.ContractSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.Purpose) == "" {
		errs = append(errs, ValidationError{
			Field:   "purpose",
			Message: "purpose is required and must be non-empty",
			Code:    ErrPurposeEmpty,
		})
	}

	if len(spec.Operations) == 0 {
		errs = append(errs, ValidationError{
			Field:   "operations",
			Message: "at least one operation is required",
			Code:    ErrNoOperations,
		})
	}

	public := make(map[string]bool, len(spec.Ledger))
	for i, f := range spec.Ledger {
		if public[f.Name] {
			errs = append(errs, duplicate(fmt.Sprintf("ledger[%d].name", i), "ledger field", f.Name))
		}
		public[f.Name] = true
		errs = append(errs, checkFloat(fmt.Sprintf("ledger[%d].type", i), f.Type)...)
	}

	private := make(map[string]bool, len(spec.Private))
	for i, f := range spec.Private {
		if private[f.Name] {
			errs = append(errs, duplicate(fmt.Sprintf("private[%d].name", i), "private field", f.Name))
		}
		private[f.Name] = true
		if public[f.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("private[%d].name", i),
				Message: fmt.Sprintf("field %q is declared in both ledger and private state", f.Name),
				Code:    ErrStateOverlap,
			})
		}
		errs = append(errs, checkFloat(fmt.Sprintf("private[%d].type", i), f.Type)...)
	}

	names := make(map[string]bool, len(spec.Operations))
	for i, op := range spec.Operations {
		if names[op.Name] {
			errs = append(errs, duplicate(fmt.Sprintf("operations[%d].name", i), "operation", op.Name))
		}
		names[op.Name] = true

		for j, a := range op.Args {
			errs = append(errs, checkFloat(fmt.Sprintf("operations[%d].args[%d].type", i, j), a.Type)...)
		}

		if len(op.Outputs) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("operations[%d].outputs", i),
				Message: fmt.Sprintf("operation %q must have at least one output case", op.Name),
				Code:    ErrOperationNoOutputs,
			})
			continue
		}

		hasSuccess := false
		for j, out := range op.Outputs {
			if out.Case == ir.CaseSuccess {
				hasSuccess = true
			}
			if op.IsPrivate() && len(out.Fields) > 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("operations[%d].outputs[%d].fields", i, j),
					Message: fmt.Sprintf("private operation %q must not expose result fields", op.Name),
					Code:    ErrPrivateOutputFields,
				})
			}
			for _, k := range sortedFieldNames(out.Fields) {
				errs = append(errs, checkFloat(fmt.Sprintf("operations[%d].outputs[%d].fields.%s", i, j, k), out.Fields[k])...)
			}
		}
		if !hasSuccess {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("operations[%d].outputs", i),
				Message: fmt.Sprintf("operation %q has no %q case", op.Name, ir.CaseSuccess),
				Code:    ErrNoSuccessCase,
			})
		}
	}

	return errs
}

func duplicate(field, kind, name string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("duplicate %s name: %q", kind, name),
		Code:    ErrDuplicateName,
	}
}

var floatTypes = map[string]bool{
	"float":   true,
	"float32": true,
	"float64": true,
	"number":  true,
	"double":  true,
}

func checkFloat(field, typ string) []ValidationError {
	if !floatTypes[typ] {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Message: fmt.Sprintf("float type %q is forbidden, use an integer type", typ),
		Code:    ErrFloatTypeForbidden,
	}}
}
