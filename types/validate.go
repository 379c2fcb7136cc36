package types

import "github.com/go-playground/validator/v10"

// validate is the shared validator instance used across this package.
var validate = validator.New()
