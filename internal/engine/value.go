package engine

// Member is a single key/value pair of a decoded object.
type Member struct {
	Key   string
	Value any
}

// Object is a decoded JSON/YAML mapping that keeps source key order.
// Values are Object, []any, string, json.Number (JSON) or int64/float64 (YAML),
// bool or nil.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for i := range o {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in source order.
func (o Object) Keys() []string {
	out := make([]string, len(o))
	for i := range o {
		out[i] = o[i].Key
	}
	return out
}

// Plain converts v into the map-based shape produced by encoding/json, dropping
// key order. Objects become map[string]any recursively.
func Plain(v any) any {
	switch t := v.(type) {
	case Object:
		m := make(map[string]any, len(t))
		for _, mem := range t {
			m[mem.Key] = Plain(mem.Value)
		}
		return m
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = Plain(t[i])
		}
		return arr
	default:
		return v
	}
}
