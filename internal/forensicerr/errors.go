// Package forensicerr defines the sentinel errors the analysis engine
// classifies failures with, plus a Wrap helper that tags errors with
// component context.
package forensicerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode marks unreadable pixel data. Operations needing decoded
	// pixels fail outright; nothing partial is returned.
	ErrDecode = errors.New("decode error")
	// ErrStrategy marks a single extraction strategy's failure. The
	// strategy is recorded as failed and excluded from consolidation.
	ErrStrategy = errors.New("strategy error")
	// ErrUnsupported marks input outside the known format table.
	ErrUnsupported = errors.New("unsupported input")
	// ErrConfiguration marks invalid configuration values.
	ErrConfiguration = errors.New("configuration error")
	// ErrStorage marks cache or history persistence failures.
	ErrStorage = errors.New("storage error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStrategy
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "analysis failure"
	}
	return strings.Join(parts, ": ")
}
