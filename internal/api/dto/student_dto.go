package dto

import (
	"time"

	"github.com/spec-kit/classroom-service/internal/domain"
)

// StudentRequest payload for creating or updating a student.
type StudentRequest struct {
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	ClassName string `json:"class_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// StudentResponse is the public view of a student record.
type StudentResponse struct {
	ID        string    `json:"id"`
	StudentNo string    `json:"student_no"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	ClassName string    `json:"class_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudentResponse maps a domain student to its response form.
func NewStudentResponse(student *domain.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		StudentNo: student.StudentNo,
		Name:      student.Name,
		Gender:    student.Gender,
		ClassName: student.ClassName,
		Phone:     student.Phone,
		Address:   student.Address,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}
