// Package repository persists the attendance domain in PostgreSQL.
package repository

import "strconv"

// itoa shortens positional-argument building in dynamic queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}
