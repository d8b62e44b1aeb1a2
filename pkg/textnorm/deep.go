package textnorm

// CleanAny applies Clean to every string value anywhere inside a decoded JSON
// tree. It is the final defensive pass over a transformed record, catching
// stray uncleaned strings introduced during field resolution. Non-string
// scalars are returned unchanged.
func CleanAny(v any) any {
	switch val := v.(type) {
	case string:
		return Clean(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CleanAny(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CleanAny(item)
		}
		return out
	default:
		return v
	}
}
