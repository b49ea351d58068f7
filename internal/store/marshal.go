package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/countersim/internal/ir"
)

// marshalObject stores an IRObject as canonical JSON TEXT. A nil object is
// stored as "{}".
func marshalObject(what string, obj ir.IRObject) (string, error) {
	if obj == nil {
		return "{}", nil
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(data), nil
}

// unmarshalObject parses JSON TEXT back into an IRObject. Empty input
// yields an empty, non-nil object.
func unmarshalObject(what, data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return obj, nil
}
