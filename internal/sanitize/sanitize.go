// Package sanitize strips nil-valued entries from documents before they
// reach the store layer, which rejects explicit nulls.
package sanitize

// Clean walks the value and removes map entries whose value is nil, at any
// depth. Array order and every non-nil value are preserved. Scalars pass
// through untouched.
func Clean(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = Clean(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Clean(item)
		}
		return out
	default:
		return v
	}
}

// CleanMap is Clean specialized to the document shape the store accepts.
func CleanMap(m map[string]interface{}) map[string]interface{} {
	return Clean(m).(map[string]interface{})
}
