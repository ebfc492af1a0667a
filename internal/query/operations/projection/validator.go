package projection

import (
	"fmt"
	"strings"

	"github.com/leengari/tableconv/internal/domain/errors"
)

// ValidateCriterion checks that the criterion can select anything at all
func ValidateCriterion(c Criterion) error {
	if c.MaxColumns < 0 {
		return errors.NewConfigError("max_columns", fmt.Sprintf("must not be negative, got %d", c.MaxColumns))
	}
	if len(c.Fields) == 0 {
		return errors.NewConfigError("fields", "at least one field name is required")
	}
	for i, f := range c.Fields {
		if strings.TrimSpace(f) == "" {
			return errors.NewConfigError("fields", fmt.Sprintf("field %d is empty", i))
		}
	}
	return nil
}
