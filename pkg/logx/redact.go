package logx

import "strings"

const mask = "********"

// SensitiveKeys are body keys whose values never reach the log output.
var SensitiveKeys = []string{"password", "old-password", "token", "client-secret", "cognito-user-pool-client-secret"}

// Redact returns a shallow copy of body with sensitive values masked.
// Nested maps are redacted recursively.
func Redact(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}

	out := make(map[string]any, len(body))
	for k, v := range body {
		switch {
		case isSensitive(k):
			out[k] = mask
		default:
			if nested, ok := v.(map[string]any); ok {
				out[k] = Redact(nested)
				continue
			}
			out[k] = v
		}
	}
	return out
}

func isSensitive(key string) bool {
	for _, s := range SensitiveKeys {
		if strings.EqualFold(key, s) {
			return true
		}
	}
	return false
}
