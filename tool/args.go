package tool

// Argument extraction helpers. Tool arguments arrive as JSON-decoded maps,
// so numbers are float64 and everything is optional unless the schema says
// otherwise.

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func intArg(args map[string]any, key string) int {
	return int(floatArg(args, key))
}
