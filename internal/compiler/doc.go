// Package compiler turns CUE contract descriptions into ir.ContractSpec and
// validates operation arguments against the contract's CUE types.
//
// A contract lives under contract.<Name> and declares:
//
//	purpose:   string
//	types:     named CUE constraints, e.g. uint64: int & >=0 & <=18446744073709551615
//	ledger:    public state fields, field name -> type name
//	private:   caller-local state fields, field name -> type name
//	operation: name -> {visibility?, args, outputs}
//
// The counter contract ships embedded; see LoadDefault.
package compiler
