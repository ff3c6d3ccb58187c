package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/classroom-service/internal/auth"
	"github.com/spec-kit/classroom-service/internal/domain"
	"github.com/spec-kit/classroom-service/internal/events"
	"github.com/spec-kit/classroom-service/internal/repository"
	apperrors "github.com/spec-kit/classroom-service/pkg/util"
)

// StudentService manages student records.
type StudentService struct {
	students   repository.StudentRepository
	dispatcher events.Dispatcher
}

// NewStudentService builds the service.
func NewStudentService(students repository.StudentRepository, dispatcher events.Dispatcher) *StudentService {
	return &StudentService{students: students, dispatcher: dispatcher}
}

// Create validates and persists a new student record.
func (s *StudentService) Create(ctx context.Context, actor *auth.Claims, student *domain.Student) error {
	if student.StudentNo == "" || student.Name == "" {
		return apperrors.NewValidationError("student_no and name required", nil)
	}
	if err := s.students.Create(ctx, student); err != nil {
		return err
	}
	s.publish(ctx, events.EventStudentCreated, actor, student)
	return nil
}

// Update persists changes to an existing student record.
func (s *StudentService) Update(ctx context.Context, actor *auth.Claims, student *domain.Student) error {
	if student.ID == "" {
		return apperrors.NewValidationError("student id required", nil)
	}
	if err := s.students.Update(ctx, student); err != nil {
		return err
	}
	s.publish(ctx, events.EventStudentUpdated, actor, student)
	return nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, actor *auth.Claims, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventStudentDeleted, actor, &domain.Student{ID: id})
	return nil
}

// Get loads a single student record.
func (s *StudentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	return s.students.GetByID(ctx, id)
}

// List returns a page of student records.
func (s *StudentService) List(ctx context.Context, limit, offset int) ([]*domain.Student, error) {
	return s.students.List(ctx, limit, offset)
}

func (s *StudentService) publish(ctx context.Context, eventType events.EventType, actor *auth.Claims, student *domain.Student) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: &events.StudentChangedPayload{
			StudentID: student.ID,
			StudentNo: student.StudentNo,
		},
	}
	if actor != nil {
		event.Actor = events.Actor{
			UserID:   actor.Subject,
			Username: actor.Username,
			Role:     actor.UserRole(),
		}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
