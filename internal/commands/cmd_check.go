package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
)

// ErrInvalidConfig is returned by --check-config when validation fails.
var ErrInvalidConfig = errors.New("configuration is invalid")

// writeValidation prints the result of a deep config validation, one line
// per failing field.
func writeValidation(w io.Writer, result error) error {
	if result == nil {
		_, err := fmt.Fprintln(w, "configuration is valid")
		return err
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(result, &fieldErrs) {
		_, _ = fmt.Fprintf(w, "  ✗ %v\n", result)
		return ErrInvalidConfig
	}

	for _, fe := range fieldErrs {
		_, _ = fmt.Fprintf(w, "  ✗ %s: %v\n", fe.Field, fe.Err)
	}
	return fmt.Errorf("%w: %d problem(s)", ErrInvalidConfig, len(fieldErrs))
}
