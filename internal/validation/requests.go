// Package validation checks the shape of incoming requests before they reach the services.
package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"socialcore/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// NameMaxLength is the longest accepted profile name.
const NameMaxLength = 20

var nameRegex = regexp.MustCompile(`^[\w]+$`)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar,omitempty"`
	Banner   *string `json:"banner,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, NameMaxLength).Error("name must be at most 20 characters"),
			validation.Match(nameRegex).Error("name may only contain letters, numbers and underscores"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(1, 128).Error("password must be at most 128 characters"),
		),
		validation.Field(&r.Avatar, validation.NilOrNotEmpty, is.URL.Error("avatar must be a URL")),
		validation.Field(&r.Banner, validation.NilOrNotEmpty, is.URL.Error("banner must be a URL")),
	))
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat.Error("invalid email format")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	))
}

// MediaRequest is the body of PUT /api/profiles/:name/media.
type MediaRequest struct {
	Avatar *string `json:"avatar"`
	Banner *string `json:"banner"`
}

func (r MediaRequest) Validate() error {
	return asValidationError(validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.NilOrNotEmpty, is.URL.Error("avatar must be a URL")),
		validation.Field(&r.Banner, validation.NilOrNotEmpty, is.URL.Error("banner must be a URL")),
	))
}

// Update converts the request into a partial media update.
func (r MediaRequest) Update() models.MediaUpdate {
	return models.MediaUpdate{Avatar: r.Avatar, Banner: r.Banner}
}

// ValidateName checks a profile name taken from a URL path.
func ValidateName(name string) error {
	return asValidationError(validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.Length(1, NameMaxLength).Error("name must be at most 20 characters"),
		validation.Match(nameRegex).Error("name may only contain letters, numbers and underscores"),
	))
}

// asValidationError flattens ozzo errors into a single models validation error
// with a stable, field-sorted message.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		keys := make([]string, 0, len(fieldErrs))
		for k := range fieldErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fieldErrs[k].Error())
		}
		return models.NewValidationError(strings.Join(parts, "; "))
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return models.NewStoreError(err)
	}
	return models.NewValidationError(err.Error())
}
