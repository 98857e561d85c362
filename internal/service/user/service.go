package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/ulchatur/app/internal/domain"
	"github.com/ulchatur/app/internal/repository"
)

// ErrValidation is the root of all input validation failures. Handlers map
// anything wrapping it to a 400 response.
var ErrValidation = errors.New("invalid input")

var (
	errMissingName  = fmt.Errorf("%w: name is required", ErrValidation)
	errMissingEmail = fmt.Errorf("%w: email is required", ErrValidation)
	errNoFields     = fmt.Errorf("%w: no fields to update", ErrValidation)
	errInvalidID    = fmt.Errorf("%w: id must be positive", ErrValidation)
)

// CreateInput encapsulates user creation attributes.
type CreateInput struct {
	Name  string
	Email string
}

// UpdateInput holds the optional fields of a partial update.
type UpdateInput struct {
	Name  *string
	Email *string
}

// EventSink receives serialized user events. *ws.Hub satisfies it.
type EventSink interface {
	Broadcast(payload []byte)
}

// Service orchestrates user CRUD on top of the repository.
type Service struct {
	users  repository.UserRepository
	events EventSink
	logger *slog.Logger
}

// New returns a user service. events may be nil when no stream is wired.
func New(users repository.UserRepository, events EventSink, logger *slog.Logger) Service {
	return Service{users: users, events: events, logger: logger}
}

// Create validates presence of both fields and persists a new user.
// The database assigns id and created_at.
func (s Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errMissingName
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, errMissingEmail
	}
	created, err := s.users.CreateUser(ctx, input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	s.publish(domain.UserEvent{Type: domain.EventUserCreated, UserID: created.ID, User: created})
	return created, nil
}

// Get returns a single user by id.
func (s Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, errInvalidID
	}
	return s.users.GetUserByID(ctx, id)
}

// List returns all users ordered most recent first.
func (s Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Update applies a partial update. An empty field set fails validation
// before the store is touched.
func (s Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if id <= 0 {
		return errInvalidID
	}
	fields := repository.UpdateUserInput{Name: input.Name, Email: input.Email}
	if fields.IsEmpty() {
		return errNoFields
	}
	if err := s.users.UpdateUser(ctx, id, fields); err != nil {
		return err
	}
	s.publish(domain.UserEvent{Type: domain.EventUserUpdated, UserID: id})
	return nil
}

// Delete removes a user permanently; the id is never reassigned.
func (s Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errInvalidID
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.publish(domain.UserEvent{Type: domain.EventUserDeleted, UserID: id})
	return nil
}

// publish emits an event to the stream, best effort. Marshal failures are
// logged and swallowed; the mutation already committed.
func (s Service) publish(event domain.UserEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal user event", "type", event.Type, "error", err)
		}
		return
	}
	s.events.Broadcast(payload)
}
