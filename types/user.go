package types

import "time"

// Role is the authorization level a user holds on the biometric terminal.
type Role string

const (
	// RoleNormalUser can only verify themselves at the terminal.
	RoleNormalUser Role = "NormalUser"

	// RoleSuperAdmin can additionally manage other users on the device.
	RoleSuperAdmin Role = "SuperAdmin"
)

// BiometricUser represents a user enrolled on the biometric terminal.
// The terminal backend owns this record; the gateway never invents or
// mutates identity fields.
type BiometricUser struct {
	// UID is the unique internal identifier assigned by the terminal
	// backend at creation. It is immutable and never reused.
	UID string `json:"uid"`

	// UserID is the device-facing employee code. It is unique across
	// active users, set once at creation, and immutable afterwards.
	UserID string `json:"userId"`

	// Name is the user's display name.
	Name string `json:"name"`

	// Role indicates the user's privilege level on the device.
	Role Role `json:"role"`

	// HasFingerprint reports whether a fingerprint template is enrolled
	// on the device. Flipped only by a successful device-side enrollment,
	// never editable through the gateway.
	HasFingerprint bool `json:"hasFingerprint"`

	// HasFace reports whether a face template is enrolled on the device.
	HasFace bool `json:"hasFace"`

	// HasPassword reports whether a device password is set.
	HasPassword bool `json:"hasPassword"`

	// BadgeNumber is the RFID badge assigned to the user, if any.
	// A non-empty value implies badge enrollment.
	BadgeNumber string `json:"badgeNumber,omitempty"`

	// CreatedAt is the timestamp at which the backend created the record.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the most recent backend-side update.
	UpdatedAt time.Time `json:"updatedAt"`
}

// VerificationMethods is the set of authentication mechanisms requested
// for a new user. The four methods are independent; at least one must
// be enabled for a registration to be valid.
type VerificationMethods struct {
	Fingerprint bool `json:"fingerprint"`
	Face        bool `json:"face"`
	Password    bool `json:"password"`
	Badge       bool `json:"badge"`
}

// Any reports whether at least one verification method is enabled.
func (m VerificationMethods) Any() bool {
	return m.Fingerprint || m.Face || m.Password || m.Badge
}

// CreateUserRequest is the write-only payload for registering a new user
// on the terminal. It is built from form state at submit time, sent once,
// and discarded regardless of outcome; never persisted by the gateway.
type CreateUserRequest struct {
	// UserID is the device-facing employee code for the new user.
	UserID string `json:"userId"`

	// Name is the display name for the new user.
	Name string `json:"name"`

	// Role is the privilege level the new user will hold.
	Role Role `json:"role"`

	// VerificationMethods selects which mechanisms the user will
	// authenticate with.
	VerificationMethods VerificationMethods `json:"verificationMethods"`

	// Password is the numeric device password (1-8 digits). Present iff
	// VerificationMethods.Password is enabled.
	Password string `json:"password,omitempty"`

	// BadgeNumber is the badge to assign. Present iff
	// VerificationMethods.Badge is enabled.
	BadgeNumber string `json:"badgeNumber,omitempty"`

	// FaceImage is a base64-encoded photo of the user's face. Present iff
	// VerificationMethods.Face is enabled.
	FaceImage string `json:"faceImage,omitempty"`
}
