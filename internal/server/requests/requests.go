// Package requests holds the inbound payloads shared by the gRPC and HTTP
// endpoints, with their validation rules.
package requests

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	maxEmailLength    = 255

	// bcrypt hashes at most 72 bytes of input.
	maxPasswordBytes = 72
)

// byteLength bounds the encoded size of a string. validation.Length counts
// runes, which lets multi-byte passwords slip past the bcrypt limit.
func byteLength(limit int) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if len(s) > limit {
			return fmt.Errorf("must be at most %d bytes long", limit)
		}
		return nil
	})
}

type Register struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r Register) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLength), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 0), byteLength(maxPasswordBytes)),
	)
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r Login) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshToken is the body of refresh and logout.
type RefreshToken struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshToken) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// FieldErrors flattens a validation error into field -> messages. Field
// names are the json tags. Errors that are not per-field land under "body".
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	out := map[string][]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = append(out[field], ferr.Error())
		}
		return out
	}
	out["body"] = []string{err.Error()}
	return out
}
