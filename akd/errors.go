package akd

import (
	"fmt"

	"github.com/arkadia-data/akd-go/internal/token"
)

// maxDiagnostics bounds the number of errors and the number of warnings a
// single decode can accumulate (spec.md §4.4, §5): a deliberate
// backpressure mechanism against pathological input, guaranteeing
// bounded memory for diagnostics.
const maxDiagnostics = 50

// Error is a structural decode diagnostic: it halts consumption of the
// current token but never the document (spec.md §7).
type Error struct {
	Message string
	Pos     token.Position
	// Context names the schema/node context active when the error was
	// raised (e.g. "list", "record", "metadata"), for human diagnosis.
	Context string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Warning is a deprecated/ambiguous-input diagnostic (spec.md §7).
type Warning struct {
	Message string
	Pos     token.Position
	Context string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Pos, w.Message)
}

// cappedErrors and cappedWarnings are the minimal append-only, capped
// lists the decoder needs. This intentionally does not carry the
// teacher's (cue/errors.List) Wrap/Promote/Path/sort machinery: AKD's
// diagnostics never wrap one another and are never re-sorted by
// position (see DESIGN.md).
type cappedErrors struct {
	items []Error
}

func (c *cappedErrors) add(pos token.Position, context, format string, args ...interface{}) {
	if len(c.items) >= maxDiagnostics {
		return
	}
	c.items = append(c.items, Error{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Context: context,
	})
}

type cappedWarnings struct {
	items []Warning
}

func (c *cappedWarnings) add(pos token.Position, context, format string, args ...interface{}) {
	if len(c.items) >= maxDiagnostics {
		return
	}
	c.items = append(c.items, Warning{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Context: context,
	})
}
