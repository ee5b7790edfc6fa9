package registry

// Param helpers decode the loosely-typed parameter maps the decision engine
// produces. Missing or mistyped values come back as zero values; handlers
// validate what they actually need.

// StringParam returns params[key] when it is a string.
func StringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// StringsParam returns params[key] as a string slice. JSON arrays decode as
// []any, so both shapes are accepted.
func StringsParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
