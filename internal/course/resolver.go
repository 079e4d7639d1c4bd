package course

import (
	"regexp"
	"strings"
)

// General is the fallback grouping key used when a document name does not
// resolve to a course code.
const General = "General"

var codePattern = regexp.MustCompile(`(?i)([a-z]{2,4})[\s-]?(\d{3,4})([a-z]?)`)

// Resolve maps a document display name to a canonical course code. It is
// deterministic and total: the same name always yields the same result.
// The code is the sole grouping key for plan generation and calendar title
// prefixing, so any inconsistency here would silently split or merge courses.
func Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	if m := codePattern.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1] + " " + m[2] + m[3]), true
	}
	token := firstToken(name)
	if token == "" || len(token) > 15 {
		return "", false
	}
	return token, true
}

// ResolveOrGeneral is Resolve with the General fallback applied.
func ResolveOrGeneral(name string) string {
	if code, ok := Resolve(name); ok {
		return code
	}
	return General
}

func firstToken(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
