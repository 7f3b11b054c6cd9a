package stdlib

import (
	"encoding/json"

	"github.com/glintlang/glint/internal/object"
)

// JSON builds the `json` library: encode/decode between the value
// model and JSON text. No third-party JSON library appears anywhere
// in the example pack's dependency graphs, and encoding/json covers
// the value model's shapes, so this one module is built on the
// standard library. Null, Bool, Number, String and Array values
// round-trip; HashMaps and Objects encode as JSON objects (Object
// fields starting with "__" are skipped) and decode as Objects; any
// other value encodes as its String() text.
func JSON() *object.Object {
	return NewLibrary("json", map[string]object.BuiltinFn{
		"encode": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			if len(args) == 0 {
				return nil, newArgError("encode expects a value", line, col)
			}
			b, err := json.Marshal(toJSON(args[0]))
			if err != nil {
				return nil, newArgError("value is not JSON-representable", line, col)
			}
			return object.String(string(b)), nil
		},
		"decode": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			s, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			var v interface{}
			if jerr := json.Unmarshal([]byte(s), &v); jerr != nil {
				return nil, newArgError("invalid JSON text", line, col)
			}
			return fromJSON(v), nil
		},
	})
}

func toJSON(v object.Value) interface{} {
	switch c := v.(type) {
	case object.Null, nil:
		return nil
	case object.Bool:
		return bool(c)
	case object.Number:
		return float64(c)
	case object.String:
		return string(c)
	case *object.Array:
		out := make([]interface{}, len(c.Elements))
		for i, e := range c.Elements {
			out[i] = toJSON(e)
		}
		return out
	case *object.HashMap:
		out := make(map[string]interface{}, c.Len())
		c.Each(func(k, val object.Value) { out[k.String()] = toJSON(val) })
		return out
	case *object.Object:
		out := make(map[string]interface{})
		for _, k := range c.Keys() {
			if len(k) >= 2 && k[:2] == "__" {
				continue
			}
			fv, _ := c.Get(k)
			out[k] = toJSON(fv)
		}
		return out
	default:
		return v.String()
	}
}

func fromJSON(v interface{}) object.Value {
	switch c := v.(type) {
	case nil:
		return object.Null{}
	case bool:
		return object.Bool(c)
	case float64:
		return object.Number(c)
	case string:
		return object.String(c)
	case []interface{}:
		elems := make([]object.Value, len(c))
		for i, e := range c {
			elems[i] = fromJSON(e)
		}
		return object.NewArray(elems)
	case map[string]interface{}:
		obj := object.NewObject()
		for k, val := range c {
			obj.Set(k, fromJSON(val))
		}
		return obj
	default:
		return object.Null{}
	}
}
