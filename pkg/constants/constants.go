package constants

import "github.com/go-playground/validator/v10"

// Validate is the shared validator instance for `validate`-tagged DTOs.
var Validate = validator.New(validator.WithRequiredStructEnabled())

type ContextKey string

const (
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	RequestStart ContextKey = "requestStart"
	PageContext  ContextKey = "pageContext"
	TokenKey     ContextKey = "token"
)
