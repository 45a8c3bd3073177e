package diag

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
)

// ToJSON renders v as indented JSON for log previews. Big integers are
// rendered as decimal strings and marshalling failures fall back to %v.
func ToJSON(v any) string {
	data, err := json.MarshalIndent(bigIntsToStrings(v), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func bigIntsToStrings(v any) any {
	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return nil
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = bigIntsToStrings(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = bigIntsToStrings(item)
		}
		return out
	}

	if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
		return fmt.Sprintf("%T", v)
	}
	return v
}
