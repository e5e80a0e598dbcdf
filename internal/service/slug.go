package service

import "strings"

// slugify turns free text into an e-mail-safe token: lowercase, with spaces
// and slashes replaced by underscores.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// derivedEmail builds the auto-generated address for a student without one.
func derivedEmail(name, className, domain string) string {
	return slugify(name) + "_" + slugify(className) + "@" + domain
}
