package shared

import (
	"github.com/go-playground/form"
)

// Decoder decodes URL query values and form bodies into `form`-tagged structs.
var Decoder = form.NewDecoder()
