package services

import (
	"context"
	"encoding/base64"

	"github.com/bioenroll/gateway/internal/enrollment"
	"github.com/bioenroll/gateway/internal/mq"
	"github.com/bioenroll/gateway/internal/roster"
	"github.com/bioenroll/gateway/internal/storage"
	"github.com/bioenroll/gateway/internal/terminal"
	"github.com/bioenroll/gateway/types"
)

// TerminalClient defines the backend operations the service relays.
type TerminalClient interface {
	ListUsers(ctx context.Context) terminal.ListResult
	CreateUser(ctx context.Context, req types.CreateUserRequest) terminal.EntityResult
	UpdateUser(ctx context.Context, user types.BiometricUser) terminal.EntityResult
	DeleteUser(ctx context.Context, uid string) terminal.DeleteResult
}

// EventRecorder defines audit persistence for enrollment events.
type EventRecorder interface {
	Record(ctx context.Context, event types.EnrollmentEvent) (types.EnrollmentEvent, error)
	List(ctx context.Context, offset, limit int) ([]types.EnrollmentEvent, int, error)
}

// EnrollmentService relays user operations to the terminal backend and
// carries the surrounding duties: audit every write, archive accepted
// face captures, and publish events for device-sync workers. The
// archive and publisher are optional; a nil value disables that duty.
type EnrollmentService struct {
	terminal  TerminalClient
	events    EventRecorder
	archive   *storage.Archive
	publisher *mq.Events
}

func NewEnrollmentService(terminal TerminalClient, events EventRecorder, archive *storage.Archive, publisher *mq.Events) *EnrollmentService {
	return &EnrollmentService{
		terminal:  terminal,
		events:    events,
		archive:   archive,
		publisher: publisher,
	}
}

// ListUsers fetches the roster, optionally narrowed by a free-text
// query. Filtering happens gateway-side on the full fetch; the backend
// has no search parameter.
func (s *EnrollmentService) ListUsers(ctx context.Context, query string) terminal.ListResult {
	result := s.terminal.ListUsers(ctx)
	if result.Success && query != "" {
		result.Users = roster.Filter(result.Users, query)
	}
	return result
}

// Register validates the form and, if it passes, relays the create to
// the backend. Validation failures never reach the network. The create
// payload is built at submit time and discarded with the call.
func (s *EnrollmentService) Register(ctx context.Context, form enrollment.RegistrationForm, actor string) (enrollment.FieldErrors, terminal.EntityResult) {
	errs := enrollment.Validate(form)
	if !errs.Valid() {
		return errs, terminal.EntityResult{}
	}

	req := form.Request()
	result := s.terminal.CreateUser(ctx, req)

	if result.Success && req.FaceImage != "" && s.archive != nil {
		if image, err := base64.StdEncoding.DecodeString(req.FaceImage); err == nil {
			// Archive failures do not void an accepted registration.
			_, _ = s.archive.SaveCapture(ctx, req.UserID, image)
		}
	}

	event := s.record(ctx, types.EnrollmentEvent{
		Action:    types.EventActionCreate,
		UID:       resultUID(result),
		UserID:    req.UserID,
		Succeeded: result.Success,
		Message:   resultMessage(result.Message, result.Error),
		NextStep:  result.NextStep,
		Actor:     actor,
	})

	if result.Success && result.NextStep != "" && s.publisher != nil {
		_, _ = s.publisher.PublishEnrollment(ctx, event)
	}

	return nil, result
}

// Rename changes the only fields an operator may edit, name and role.
// The current server record is fetched first so enrollment flags and
// identity fields are sent back exactly as the backend last reported
// them.
func (s *EnrollmentService) Rename(ctx context.Context, uid, name string, role types.Role, actor string) terminal.EntityResult {
	list := s.terminal.ListUsers(ctx)
	if !list.Success {
		return terminal.EntityResult{Error: list.Error}
	}

	var current *types.BiometricUser
	for i := range list.Users {
		if list.Users[i].UID == uid {
			current = &list.Users[i]
			break
		}
	}
	if current == nil {
		return terminal.EntityResult{Error: "User not found"}
	}

	user := *current
	user.Name = name
	user.Role = role
	result := s.terminal.UpdateUser(ctx, user)

	s.record(ctx, types.EnrollmentEvent{
		Action:    types.EventActionUpdate,
		UID:       uid,
		UserID:    user.UserID,
		Succeeded: result.Success,
		Message:   resultMessage(result.Message, result.Error),
		Actor:     actor,
	})

	return result
}

// Delete relays a removal to the backend and publishes the outcome so
// workers can drop the user from the device fleet.
func (s *EnrollmentService) Delete(ctx context.Context, uid, actor string) terminal.DeleteResult {
	result := s.terminal.DeleteUser(ctx, uid)

	event := s.record(ctx, types.EnrollmentEvent{
		Action:    types.EventActionDelete,
		UID:       uid,
		Succeeded: result.Success,
		Message:   resultMessage(result.Message, result.Error),
		Actor:     actor,
	})

	if result.Success && s.publisher != nil {
		_, _ = s.publisher.PublishEnrollment(ctx, event)
	}

	return result
}

// Events returns recorded audit events, newest first, plus the total.
func (s *EnrollmentService) Events(ctx context.Context, offset, limit int) ([]types.EnrollmentEvent, int, error) {
	return s.events.List(ctx, offset, limit)
}

// record persists an audit event. Auditing is best-effort: a recording
// failure never overturns the backend's answer.
func (s *EnrollmentService) record(ctx context.Context, event types.EnrollmentEvent) types.EnrollmentEvent {
	if s.events == nil {
		return event
	}
	recorded, err := s.events.Record(ctx, event)
	if err != nil {
		return event
	}
	return recorded
}

func resultUID(result terminal.EntityResult) string {
	if result.Data != nil {
		return result.Data.UID
	}
	return ""
}

func resultMessage(message, errMsg string) string {
	if errMsg != "" {
		return errMsg
	}
	return message
}
