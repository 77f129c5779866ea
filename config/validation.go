// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// A FieldError describes one invalid setting.
type FieldError struct {
	// Key is the dotted configuration key, such as client.retry.
	Key string
	// Rule is the failed validation rule, such as gte=0.
	Rule string
	// Value is the rejected value.
	Value any
}

// ValidationError lists every invalid setting of a Config.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %v violates %s", fe.Key, fe.Value, fe.Rule))
	}
	return "fetchx/config: invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks every setting of cfg.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		ve.Errors = append(ve.Errors, FieldError{
			Key:   key,
			Rule:  rule,
			Value: fe.Value(),
		})
	}
	return ve
}
