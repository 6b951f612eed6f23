package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name string
	// numbered selects $1, $2 placeholders instead of ?.
	numbered bool
	// lockRows is appended to read-modify-write selects.
	lockRows string
	// fold is the SQL function lowercasing a column for search; LOWER when empty.
	fold string
	// isUniqueViolation reports whether err is a unique constraint failure.
	isUniqueViolation func(err error) bool
}

func (d Dialect) foldFunc() string {
	if d.fold == "" {
		return "LOWER"
	}
	return d.fold
}

// rebind rewrites ? placeholders for the dialect. Queries never contain a
// literal question mark.
func (d Dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
