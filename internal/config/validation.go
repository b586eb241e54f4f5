package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section against its struct tags and reports all
// failing fields at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// HasAPIKey reports whether a completion key is configured.
func (c AIConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
