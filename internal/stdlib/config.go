package stdlib

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glintlang/glint/internal/object"
)

// Config builds the `config` library, letting a program load and
// save its own YAML-formatted configuration using the same library
// the interpreter uses for its own interp.Config (see internal/interp).
func Config() *object.Object {
	return NewLibrary("config", map[string]object.BuiltinFn{
		"load": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			path, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				return nil, newArgError("could not read config file: "+rerr.Error(), line, col)
			}
			var raw map[string]interface{}
			if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
				return nil, newArgError("invalid YAML: "+yerr.Error(), line, col)
			}
			return fromJSON(normalizeYAML(raw)), nil
		},
		"save": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			path, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			if len(args) < 2 {
				return nil, newArgError("save expects (path, value)", line, col)
			}
			out, merr := yaml.Marshal(toJSON(args[1]))
			if merr != nil {
				return nil, newArgError("value is not serializable to YAML", line, col)
			}
			if werr := os.WriteFile(path, out, 0o644); werr != nil {
				return nil, newArgError("could not write config file: "+werr.Error(), line, col)
			}
			return object.Bool(true), nil
		},
	})
}

// normalizeYAML recursively converts the map[interface{}]interface{}
// shapes yaml.v3 can still produce for nested maps into
// map[string]interface{}, so fromJSON's type switch (built for
// encoding/json's output shapes) handles both encoders uniformly.
func normalizeYAML(v interface{}) interface{} {
	switch c := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(c))
		for k, val := range c {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(c))
		for k, val := range c {
			out[toStringKey(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(c))
		for i, val := range c {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(c)
	default:
		return v
	}
}

func toStringKey(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return object.Inspect(fromJSON(v))
}
