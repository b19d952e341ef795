// Package pattern evaluates classification rules against files.
package pattern

import (
	"github.com/Veraticus/folderly/internal/model"
)

// Rule is an alias to the model.ClassificationRule type for convenience.
type Rule = model.ClassificationRule
