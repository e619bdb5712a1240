package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the workspace fields the loader and logger depend on.
func (ws *Workspace) Validate() error {
	if err := validate.Struct(ws); err != nil {
		return fmt.Errorf("invalid workspace settings: %w", err)
	}
	return nil
}
