package mvbb

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrDegenerateInput marks point sets that do not define a direction:
	// empty input, a single distinct point, or non-finite coordinates.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidParameter marks tuning parameters outside their domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)

func degenerateInputf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrDegenerateInput)
}

func invalidParameterf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidParameter)
}

// WarningKind classifies non-fatal conditions met during a computation
type WarningKind string

// NumericInstability is reported when a direction estimate had low
// confidence and a fallback was used instead.
const NumericInstability WarningKind = "numeric-instability"

// Warning is a non-fatal condition; the result is still valid
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
