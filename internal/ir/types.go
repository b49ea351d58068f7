package ir

// Operation visibility. Private operations touch only caller-local state and
// are journaled without arguments or results.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Output cases recorded on transitions.
const (
	CaseSuccess        = "Success"
	CaseRangeViolation = "RangeViolation"
)

// ContractSpec is the compiled description of a contract: its state fields
// and the operations callers may apply.
type ContractSpec struct {
	Name       string         `json:"name"`
	Purpose    string         `json:"purpose"`
	Ledger     []StateField   `json:"ledger"`
	Private    []StateField   `json:"private"`
	Operations []OperationSig `json:"operations"`
}

// Operation returns the signature named name.
func (s ContractSpec) Operation(name string) (OperationSig, bool) {
	for _, op := range s.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return OperationSig{}, false
}

// StateField is one named, typed state slot.
type StateField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// OperationSig is an operation signature.
type OperationSig struct {
	Name       string       `json:"name"`
	Visibility string       `json:"visibility"`
	Args       []NamedArg   `json:"args"`
	Outputs    []OutputCase `json:"outputs"`
}

// IsPrivate reports whether the operation only touches private state.
func (o OperationSig) IsPrivate() bool {
	return o.Visibility == VisibilityPrivate
}

// NamedArg is a named, typed argument.
type NamedArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// OutputCase is one possible outcome of an operation.
type OutputCase struct {
	Case   string            `json:"case"`
	Fields map[string]string `json:"fields"`
}

// Session identifies one simulator lifetime in the journal.
type Session struct {
	ID            string `json:"id"`
	Network       string `json:"network"`
	SpecHash      string `json:"spec_hash"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Transition is the public journal record of one applied operation.
//
// For private operations Args and Result are empty and LedgerBefore equals
// LedgerAfter: nothing caller-local is ever recorded.
type Transition struct {
	ID           string   `json:"id"`
	SessionID    string   `json:"session_id"`
	Operation    string   `json:"operation"`
	Visibility   string   `json:"visibility"`
	Args         IRObject `json:"args"`
	OutputCase   string   `json:"output_case"`
	Result       IRObject `json:"result"`
	LedgerBefore string   `json:"ledger_before"`
	LedgerAfter  string   `json:"ledger_after"`
	Seq          int64    `json:"seq"`
}

// ToIR converts the spec to an IRObject so it can be hashed canonically.
func (s ContractSpec) ToIR() IRObject {
	ops := make(IRArray, len(s.Operations))
	for i, op := range s.Operations {
		args := make(IRArray, len(op.Args))
		for j, a := range op.Args {
			args[j] = Obj(O("name", IRString(a.Name)), O("type", IRString(a.Type)))
		}
		outputs := make(IRArray, len(op.Outputs))
		for j, out := range op.Outputs {
			fields := make(IRObject, len(out.Fields))
			for k, v := range out.Fields {
				fields[k] = IRString(v)
			}
			outputs[j] = Obj(O("case", IRString(out.Case)), O("fields", fields))
		}
		ops[i] = Obj(
			O("name", IRString(op.Name)),
			O("visibility", IRString(op.Visibility)),
			O("args", args),
			O("outputs", outputs),
		)
	}
	return Obj(
		O("name", IRString(s.Name)),
		O("purpose", IRString(s.Purpose)),
		O("ledger", fieldsToIR(s.Ledger)),
		O("private", fieldsToIR(s.Private)),
		O("operations", ops),
	)
}

func fieldsToIR(fields []StateField) IRArray {
	arr := make(IRArray, len(fields))
	for i, f := range fields {
		arr[i] = Obj(O("name", IRString(f.Name)), O("type", IRString(f.Type)))
	}
	return arr
}
