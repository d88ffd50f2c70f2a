package stringsutil

import "strings"

// RemoveEmptyStrings drops empty entries from a slice.
func RemoveEmptyStrings(slice []string) []string {
	var result []string
	for _, s := range slice {
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// TrimAndSplit splits a comma-separated value into trimmed, non-empty
// tokens. A blank input yields nil.
func TrimAndSplit(s string) []string {
	var result []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			result = append(result, token)
		}
	}
	return result
}
