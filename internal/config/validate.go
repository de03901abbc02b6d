package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

var validate = validator.New()

// Logging holds resolved log settings.
type Logging struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
	File   string
}

// Settings is the fully resolved configuration after flags and file are merged.
type Settings struct {
	Practice      model.Config
	Speech        model.SpeechConfig
	SpeechEnabled bool
	Log           Logging
}

// Validate checks resolved settings and wraps failures in common.ErrInvalidConfig.
func Validate(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Settings."))
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gt", "lte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
