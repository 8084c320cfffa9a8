package common

import "strings"

// BearerToken extracts the token from an "Authorization: Bearer <t>" value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	t := strings.TrimSpace(header[len(BearerPrefix):])
	return t, t != ""
}
