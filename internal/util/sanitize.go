package util

import "strings"

// ContainsSuspicious flags input that looks like an injection attempt.
// Usernames and names never legitimately contain these.
func ContainsSuspicious(s string) bool {
	badChars := []string{"<", ">", "$", "{", "}", "script", "onerror", "onload"}
	lowered := strings.ToLower(s)
	for _, c := range badChars {
		if strings.Contains(lowered, c) {
			return true
		}
	}
	return false
}
