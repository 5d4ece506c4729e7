package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks records read from and written to the store.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks the review fields.
func (r *Review) Validate() error {
	return validate.Struct(r)
}

// Validate checks a stored friend request.
func (r *FriendRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the profile changes.
func (p *ProfileUpdate) Validate() error {
	return validate.Struct(p)
}

// Validate checks the sign-up payload.
func (r *Registration) Validate() error {
	return validate.Struct(r)
}
