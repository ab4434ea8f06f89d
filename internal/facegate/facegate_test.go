package facegate

import (
	"strings"
	"testing"
)

// payloadOfSize builds a base64 string whose decoded size estimate is
// exactly n bytes.
func payloadOfSize(n int) string {
	return strings.Repeat("A", (n*4+2)/3)
}

func TestEvaluateBounds(t *testing.T) {
	tests := []struct {
		name  string
		bytes int
		want  Verdict
	}{
		{"well under minimum", 5000, VerdictTooSmall},
		{"just under minimum", 9999, VerdictTooSmall},
		{"at minimum", 10000, VerdictOK},
		{"typical capture", 50000, VerdictOK},
		{"at maximum", 500000, VerdictOK},
		{"over maximum", 600000, VerdictTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(payloadOfSize(tt.bytes))
			if got != tt.want {
				t.Errorf("Evaluate(%d bytes) = %v, want %v", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestVerdictMessages(t *testing.T) {
	if VerdictTooSmall.Message() != MsgTooSmall {
		t.Errorf("unexpected message: %q", VerdictTooSmall.Message())
	}
	if VerdictTooLarge.Message() != MsgTooLarge {
		t.Errorf("unexpected message: %q", VerdictTooLarge.Message())
	}
	if VerdictOK.Message() != "" {
		t.Errorf("expected no message for OK, got %q", VerdictOK.Message())
	}
}

func TestSessionAcceptAndConfirm(t *testing.T) {
	session := NewSession()
	if session.State() != StateIdle {
		t.Fatalf("new session state = %v", session.State())
	}

	session.Begin()
	if session.State() != StateCapturing {
		t.Fatalf("state after Begin = %v", session.State())
	}

	image := payloadOfSize(50000)
	if verdict := session.Submit(image); verdict != VerdictOK {
		t.Fatalf("unexpected verdict: %v", verdict)
	}
	if session.State() != StateAccepted {
		t.Fatalf("state after accepted Submit = %v", session.State())
	}

	got, ok := session.Confirm()
	if !ok || got != image {
		t.Errorf("Confirm returned (%d chars, %v)", len(got), ok)
	}
	if session.State() != StateConfirmed {
		t.Errorf("state after Confirm = %v", session.State())
	}
}

func TestSessionRejectThenOverride(t *testing.T) {
	session := NewSession()
	session.Begin()

	if verdict := session.Submit(payloadOfSize(5000)); verdict != VerdictTooSmall {
		t.Fatalf("unexpected verdict: %v", verdict)
	}
	if session.State() != StateRejected {
		t.Fatalf("state after rejected Submit = %v", session.State())
	}

	// A rejected capture cannot be confirmed without an override.
	if _, ok := session.Confirm(); ok {
		t.Error("Confirm succeeded on a rejected capture")
	}

	session.Override()
	if session.State() != StateAccepted {
		t.Fatalf("state after Override = %v", session.State())
	}
	if _, ok := session.Confirm(); !ok {
		t.Error("Confirm failed on an overridden capture")
	}
}

func TestSessionRejectThenRetry(t *testing.T) {
	session := NewSession()
	session.Begin()
	session.Submit(payloadOfSize(600000))

	session.Retake()
	if session.State() != StateCapturing {
		t.Fatalf("state after Retake = %v", session.State())
	}

	if verdict := session.Submit(payloadOfSize(50000)); verdict != VerdictOK {
		t.Errorf("retried capture verdict = %v", verdict)
	}
}

func TestSessionRetakeDiscardsAccepted(t *testing.T) {
	session := NewSession()
	session.Begin()
	session.Submit(payloadOfSize(50000))

	session.Retake()
	if session.State() != StateCapturing {
		t.Fatalf("state after Retake = %v", session.State())
	}
	if _, ok := session.Confirm(); ok {
		t.Error("Confirm succeeded after the capture was discarded")
	}
}

func TestOverrideOnlyFromRejected(t *testing.T) {
	session := NewSession()
	session.Override()
	if session.State() != StateIdle {
		t.Errorf("Override moved an idle session to %v", session.State())
	}
}
