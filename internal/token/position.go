// Package token defines source position types shared by the AKD decoder
// and its diagnostics.
package token

import "fmt"

// Position describes a location in a decoded document: a rune offset plus
// the 1-based line and column derived from it as the cursor advances.
//
// A Position is valid if Line > 0.
type Position struct {
	Offset int // rune (character) offset, starting at 0
	Line   int // line number, starting at 1
	Column int // column number, starting at 1 (rune count within the line)
}

// IsValid reports whether the position carries line information.
func (pos Position) IsValid() bool { return pos.Line > 0 }

// String renders the position as "line:column", or "-" if invalid.
func (pos Position) String() string {
	if !pos.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}
