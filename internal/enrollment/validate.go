// Package enrollment holds the client-side rules a registration must
// pass before any call to the terminal backend is made.
package enrollment

import (
	"strings"

	"github.com/bioenroll/gateway/types"
)

// Form field names used as keys in FieldErrors.
const (
	FieldUserID      = "userId"
	FieldName        = "name"
	FieldPassword    = "password"
	FieldConfirm     = "confirmPassword"
	FieldBadgeNumber = "badgeNumber"
	FieldMethods     = "verificationMethods"
)

// RegistrationForm is the in-progress state of a user registration. It
// is mutable between submit attempts, so validation is recomputed on
// every attempt rather than cached.
type RegistrationForm struct {
	UserID          string
	Name            string
	Role            types.Role
	Methods         types.VerificationMethods
	Password        string
	ConfirmPassword string
	BadgeNumber     string
	FaceImage       string
}

// FieldErrors maps a form field to its validation message. An empty map
// means the form is submittable.
type FieldErrors map[string]string

// Valid reports whether the form passed every rule.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Validate evaluates every rule independently and collects all
// violations; it never short-circuits on the first failure.
func Validate(form RegistrationForm) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(form.UserID) == "" {
		errs[FieldUserID] = "User ID is required"
	}
	if strings.TrimSpace(form.Name) == "" {
		errs[FieldName] = "Name is required"
	}

	if form.Methods.Password {
		switch {
		case form.Password == "":
			errs[FieldPassword] = "Password is required"
		case len(form.Password) > 8:
			errs[FieldPassword] = "Password must be 1-8 digits"
		}
		if form.Password != form.ConfirmPassword {
			errs[FieldConfirm] = "Passwords do not match"
		}
	}

	if form.Methods.Badge && strings.TrimSpace(form.BadgeNumber) == "" {
		errs[FieldBadgeNumber] = "Badge number is required when badge is enabled"
	}

	if !form.Methods.Any() {
		errs[FieldMethods] = "At least one verification method must be enabled"
	}

	return errs
}

// Request builds the transient create payload from the form. Call only
// after Validate returned no errors; fields for disabled methods are
// left out of the payload.
func (f RegistrationForm) Request() types.CreateUserRequest {
	req := types.CreateUserRequest{
		UserID:              strings.TrimSpace(f.UserID),
		Name:                strings.TrimSpace(f.Name),
		Role:                f.Role,
		VerificationMethods: f.Methods,
	}
	if f.Methods.Password {
		req.Password = f.Password
	}
	if f.Methods.Badge {
		req.BadgeNumber = strings.TrimSpace(f.BadgeNumber)
	}
	if f.Methods.Face {
		req.FaceImage = f.FaceImage
	}
	return req
}
