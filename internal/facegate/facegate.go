// Package facegate applies the size heuristic that gates face captures
// before they are attached to a registration. The check is a byte-range
// bound on the decoded payload only; it does not look at the image
// itself, so a well-sized but unusable photo still passes. Real quality
// scoring would need device-side support that does not exist today.
package facegate

// Decoded-size bounds for an acceptable capture, in bytes.
const (
	MinBytes = 10000
	MaxBytes = 500000
)

// Messages shown when a capture is soft-rejected.
const (
	MsgTooSmall = "Image too small, move closer"
	MsgTooLarge = "Image too large, move back"
)

// Verdict is the outcome of sizing a capture.
type Verdict int

const (
	// VerdictOK means the capture is within bounds.
	VerdictOK Verdict = iota

	// VerdictTooSmall means the payload is under MinBytes.
	VerdictTooSmall

	// VerdictTooLarge means the payload is over MaxBytes.
	VerdictTooLarge
)

// Message returns the user-facing hint for a rejection, or "" for an
// acceptable capture.
func (v Verdict) Message() string {
	switch v {
	case VerdictTooSmall:
		return MsgTooSmall
	case VerdictTooLarge:
		return MsgTooLarge
	default:
		return ""
	}
}

// DecodedSize estimates the decoded byte length of a base64 payload
// from its character count.
func DecodedSize(base64Image string) int {
	return len(base64Image) * 3 / 4
}

// Evaluate sizes a base64 capture against the bounds.
func Evaluate(base64Image string) Verdict {
	size := DecodedSize(base64Image)
	switch {
	case size < MinBytes:
		return VerdictTooSmall
	case size > MaxBytes:
		return VerdictTooLarge
	default:
		return VerdictOK
	}
}

// State is a phase of the capture session.
type State int

const (
	// StateIdle means no capture is in progress.
	StateIdle State = iota

	// StateCapturing means the session is waiting for a photo.
	StateCapturing

	// StateRejected means the last capture failed the size check and
	// the operator must retry or override.
	StateRejected

	// StateAccepted means a capture is held and awaiting confirmation.
	StateAccepted

	// StateConfirmed means the capture was handed to the caller; the
	// session is finished.
	StateConfirmed
)

// Session drives a single face-capture flow:
//
//	idle -> capturing -> {rejected, accepted} -> confirmed
//
// A rejected capture can be retried or force-accepted; an accepted one
// can be retaken (back to capturing) or confirmed.
type Session struct {
	state   State
	image   string
	verdict Verdict
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Verdict returns the size verdict of the last submitted capture.
func (s *Session) Verdict() Verdict {
	return s.verdict
}

// Begin moves an idle or rejected session into the capturing phase,
// discarding any held image.
func (s *Session) Begin() {
	s.state = StateCapturing
	s.image = ""
	s.verdict = VerdictOK
}

// Submit evaluates a capture. Within bounds it is accepted and held;
// out of bounds the session moves to rejected, keeping the image so the
// operator may still force-accept it.
func (s *Session) Submit(base64Image string) Verdict {
	s.image = base64Image
	s.verdict = Evaluate(base64Image)
	if s.verdict == VerdictOK {
		s.state = StateAccepted
	} else {
		s.state = StateRejected
	}
	return s.verdict
}

// Override force-accepts a rejected capture despite the size warning.
func (s *Session) Override() {
	if s.state == StateRejected {
		s.state = StateAccepted
	}
}

// Retake discards the held capture and returns to the capturing phase.
func (s *Session) Retake() {
	if s.state == StateAccepted || s.state == StateRejected {
		s.Begin()
	}
}

// Confirm hands the held capture to the caller and finishes the
// session. The second return is false unless a capture was accepted.
func (s *Session) Confirm() (string, bool) {
	if s.state != StateAccepted {
		return "", false
	}
	s.state = StateConfirmed
	return s.image, true
}
