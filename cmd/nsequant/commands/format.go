package commands

import "strings"

// separator returns a horizontal rule of the given width.
func separator(width int) string {
	return strings.Repeat("─", width)
}
