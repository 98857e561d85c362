package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ulchatur/app/internal/domain"
	"github.com/ulchatur/app/internal/repository"
)

type stubUserRepository struct {
	users map[int64]domain.User

	createCalls int
	lastUpdate  repository.UpdateUserInput
	updateCalls int
	deleteCalls int
	failWith    error
}

func (s *stubUserRepository) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	s.createCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	u := domain.User{ID: int64(len(s.users)) + 1, Name: name, Email: email, CreatedAt: time.Now().UTC()}
	if s.users == nil {
		s.users = make(map[int64]domain.User)
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return []domain.User{}, nil
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, id int64, input repository.UpdateUserInput) error {
	s.updateCalls++
	s.lastUpdate = input
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *stubUserRepository) DeleteUser(ctx context.Context, id int64) error {
	s.deleteCalls++
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type captureSink struct {
	payloads [][]byte
}

func (c *captureSink) Broadcast(payload []byte) {
	c.payloads = append(c.payloads, payload)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateRequiresNameAndEmail(t *testing.T) {
	repo := &stubUserRepository{}
	svc := New(repo, nil, testLogger())

	if _, err := svc.Create(context.Background(), CreateInput{Email: "a@x.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Ann"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "  ", Email: "a@x.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("store must not be touched on validation failure, got %d calls", repo.createCalls)
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	repo := &stubUserRepository{}
	sink := &captureSink{}
	svc := New(repo, sink, testLogger())

	created, err := svc.Create(context.Background(), CreateInput{Name: "Ann", Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.payloads))
	}
	var event domain.UserEvent
	if err := json.Unmarshal(sink.payloads[0], &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != domain.EventUserCreated || event.UserID != created.ID {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.User == nil || event.User.Email != "ann@x.com" {
		t.Fatalf("expected embedded user in event, got %+v", event.User)
	}
}

func TestUpdateRejectsEmptyFieldSet(t *testing.T) {
	repo := &stubUserRepository{users: map[int64]domain.User{1: {ID: 1}}}
	svc := New(repo, nil, testLogger())

	if err := svc.Update(context.Background(), 1, UpdateInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatal("store must not be touched when no fields are set")
	}
}

func TestUpdatePassesOnlySetFields(t *testing.T) {
	repo := &stubUserRepository{users: map[int64]domain.User{1: {ID: 1, Name: "Ann", Email: "ann@x.com"}}}
	sink := &captureSink{}
	svc := New(repo, sink, testLogger())

	email := "new@x.com"
	if err := svc.Update(context.Background(), 1, UpdateInput{Email: &email}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.lastUpdate.Name != nil {
		t.Fatalf("name must stay untouched, got %v", *repo.lastUpdate.Name)
	}
	if repo.lastUpdate.Email == nil || *repo.lastUpdate.Email != email {
		t.Fatalf("expected email update, got %+v", repo.lastUpdate)
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("expected one update event, got %d", len(sink.payloads))
	}
}

func TestUpdateMissingUserReturnsNotFound(t *testing.T) {
	repo := &stubUserRepository{}
	sink := &captureSink{}
	svc := New(repo, sink, testLogger())

	name := "Annie"
	err := svc.Update(context.Background(), 42, UpdateInput{Name: &name})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(sink.payloads) != 0 {
		t.Fatal("no event must be published for a failed update")
	}
}

func TestDeletePublishesEventOnce(t *testing.T) {
	repo := &stubUserRepository{users: map[int64]domain.User{3: {ID: 3}}}
	sink := &captureSink{}
	svc := New(repo, sink, testLogger())

	if err := svc.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), 3); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("expected exactly one delete event, got %d", len(sink.payloads))
	}
	var event domain.UserEvent
	if err := json.Unmarshal(sink.payloads[0], &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != domain.EventUserDeleted || event.UserID != 3 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestGetRejectsNonPositiveID(t *testing.T) {
	svc := New(&stubUserRepository{}, nil, testLogger())
	if _, err := svc.Get(context.Background(), 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
