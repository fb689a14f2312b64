package form

import (
	"regexp"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
)

// Google API keys are 39 characters starting with "AIza".
var apiKeyRegexp = regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`)

type ConnectSheetsRequest struct {
	APIKey string `json:"apiKey"`
}

func (r *ConnectSheetsRequest) Validate() error {
	r.APIKey = strings.TrimSpace(r.APIKey)
	return ValidateStruct(r,
		v.Field(&r.APIKey, v.Required, v.Match(apiKeyRegexp).Error("must be a Google API key")),
	)
}
