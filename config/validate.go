package config

import "github.com/go-playground/validator/v10"

// validate is the shared validator instance used across this package,
// matching the teacher's llm/validate.go singleton pattern.
var validate = validator.New()

// Validate checks RunConfig's struct-tag constraints (required models,
// batchSize >= 1, callTimeoutSeconds > 0, selector one of the two enum
// values).
func (c *RunConfig) Validate() error {
	return validate.Struct(c)
}
