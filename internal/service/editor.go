package service

import (
	"context"
	"fmt"
	"sync"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/models"
)

// EditorState is where a venue create/edit form is in its lifecycle
type EditorState string

const (
	EditorLoadingRole   EditorState = "loading_role"
	EditorNotAuthorized EditorState = "not_authorized"
	EditorIdle          EditorState = "idle"
	EditorSubmitting    EditorState = "submitting"
	EditorSuccess       EditorState = "success"
	EditorFailed        EditorState = "failed"
)

// EditorStatus is the snapshot returned to the client
type EditorStatus struct {
	State   EditorState   `json:"state"`
	Message string        `json:"message,omitempty"`
	Venue   *models.Venue `json:"venue,omitempty"`
}

// Editor drives one venue form. It starts in LoadingRole; once the role is
// known it is either NotAuthorized for good or Idle. A failed submit keeps
// its message until the next submit starts.
type Editor struct {
	mu      sync.Mutex
	state   EditorState
	message string
	venue   *models.Venue
}

func NewEditor() *Editor {
	return &Editor{state: EditorLoadingRole}
}

func (e *Editor) Status() EditorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorStatus{State: e.state, Message: e.message, Venue: e.venue}
}

// Authorize resolves the role check. Only valid while loading the role.
func (e *Editor) Authorize(allowed bool, venue *models.Venue) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != EditorLoadingRole {
		return fmt.Errorf("editor already authorized: %s", e.state)
	}
	if !allowed {
		e.state = EditorNotAuthorized
		return nil
	}
	e.state = EditorIdle
	e.venue = venue
	return nil
}

// Submit runs fn as one submission. NotAuthorized forms refuse with
// ErrForbidden and a form already submitting refuses a second submit.
func (e *Editor) Submit(ctx context.Context, fn func(ctx context.Context) (*models.Venue, error)) (*models.Venue, error) {
	e.mu.Lock()
	switch e.state {
	case EditorNotAuthorized:
		e.mu.Unlock()
		return nil, apperrors.ErrForbidden
	case EditorLoadingRole:
		e.mu.Unlock()
		return nil, fmt.Errorf("editor role not resolved")
	case EditorSubmitting:
		e.mu.Unlock()
		return nil, apperrors.Validation("form", "A submission is already in progress.")
	}
	// Failed and Success go back through Idle
	e.state = EditorSubmitting
	e.message = ""
	e.mu.Unlock()

	venue, err := fn(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = EditorFailed
		e.message = apperrors.Message(err)
		return nil, err
	}
	e.state = EditorSuccess
	e.venue = venue
	return venue, nil
}
