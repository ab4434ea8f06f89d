// Package roster owns the in-memory user list and mediates the
// search/edit/delete workflow on top of the terminal client.
package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/bioenroll/gateway/internal/terminal"
	"github.com/bioenroll/gateway/types"
)

// ErrUserNotFound is returned when a UID is absent from the loaded list.
var ErrUserNotFound = errors.New("user not found")

// UserClient is the subset of the terminal client the roster needs.
type UserClient interface {
	ListUsers(ctx context.Context) terminal.ListResult
	UpdateUser(ctx context.Context, user types.BiometricUser) terminal.EntityResult
	DeleteUser(ctx context.Context, uid string) terminal.DeleteResult
}

// Roster holds the authoritative user list plus a free-text query for
// the derived filtered view. Every write goes through the backend and
// is followed by a full reload rather than a local splice, so the view
// reflects server truth even under concurrent external modification.
// A Roster is not safe for concurrent use; the caller serializes
// actions the way a UI does.
type Roster struct {
	client UserClient
	users  []types.BiometricUser
	query  string
}

// New constructs an empty roster over the given client.
func New(client UserClient) *Roster {
	return &Roster{client: client}
}

// Reload replaces the authoritative list with a fresh full fetch. On
// failure the previous list is kept and the backend's message is
// returned as the error.
func (r *Roster) Reload(ctx context.Context) error {
	result := r.client.ListUsers(ctx)
	if !result.Success {
		return errors.New(result.Error)
	}
	r.users = result.Users
	return nil
}

// Users returns a copy of the authoritative list.
func (r *Roster) Users() []types.BiometricUser {
	out := make([]types.BiometricUser, len(r.users))
	copy(out, r.users)
	return out
}

// SetQuery updates the free-text query for the filtered view.
func (r *Roster) SetQuery(query string) {
	r.query = query
}

// Visible recomputes the filtered view from the authoritative list and
// the current query.
func (r *Roster) Visible() []types.BiometricUser {
	return Filter(r.users, r.query)
}

// Filter returns the users whose name contains the query
// case-insensitively or whose employee code contains it. An empty query
// returns every user, order preserved. The input slice is never
// mutated.
func Filter(users []types.BiometricUser, query string) []types.BiometricUser {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]types.BiometricUser, len(users))
		copy(out, users)
		return out
	}

	needle := strings.ToLower(query)
	out := make([]types.BiometricUser, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Name), needle) ||
			strings.Contains(user.UserID, query) {
			out = append(out, user)
		}
	}
	return out
}

// Get returns the user with the given UID from the loaded list.
func (r *Roster) Get(uid string) (types.BiometricUser, error) {
	for _, user := range r.users {
		if user.UID == uid {
			return user, nil
		}
	}
	return types.BiometricUser{}, ErrUserNotFound
}

// Delete asks confirm for an explicit decision before anything fires.
// A cancel makes no remote call at all. A confirmed delete performs
// exactly one delete call and, on success, one full reload. The
// returned bool reports whether the delete was confirmed and accepted.
func (r *Roster) Delete(ctx context.Context, uid string, confirm func() bool) (bool, error) {
	if confirm == nil || !confirm() {
		return false, nil
	}

	result := r.client.DeleteUser(ctx, uid)
	if !result.Success {
		return false, errors.New(result.Error)
	}

	if err := r.Reload(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// EditForm is the editable copy of a selected user. Only the name and
// role are mutable; enrollment flags and identity fields ride along
// read-only from the last known server state.
type EditForm struct {
	base types.BiometricUser

	Name string
	Role types.Role
}

// Edit makes an edit form pre-populated from the user with the given
// UID.
func (r *Roster) Edit(uid string) (*EditForm, error) {
	user, err := r.Get(uid)
	if err != nil {
		return nil, err
	}
	return &EditForm{base: user, Name: user.Name, Role: user.Role}, nil
}

// User overlays the form's mutable fields on the server-owned base
// record.
func (f *EditForm) User() types.BiometricUser {
	user := f.base
	user.Name = strings.TrimSpace(f.Name)
	user.Role = f.Role
	return user
}

// SubmitEdit re-validates the form, sends the update, and reloads the
// list on success.
func (r *Roster) SubmitEdit(ctx context.Context, form *EditForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return errors.New("Name is required")
	}

	result := r.client.UpdateUser(ctx, form.User())
	if !result.Success {
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return errors.New(result.Message)
	}

	return r.Reload(ctx)
}
