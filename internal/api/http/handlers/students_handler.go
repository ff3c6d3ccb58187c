package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-service/internal/api/dto"
	"github.com/spec-kit/classroom-service/internal/auth"
	"github.com/spec-kit/classroom-service/internal/domain"
	"github.com/spec-kit/classroom-service/internal/service"
)

// StudentsHandler exposes student record endpoints.
type StudentsHandler struct {
	students *service.StudentService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(studentService *service.StudentService) *StudentsHandler {
	return &StudentsHandler{students: studentService}
}

// List handles GET /api/students.
func (h *StudentsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	students, err := h.students.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	out := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, dto.NewStudentResponse(student))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/students/:id.
func (h *StudentsHandler) Get(c *fiber.Ctx) error {
	student, err := h.students.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	claims, _ := auth.ClaimsFromContext(c)
	student := studentFromRequest(&req)
	if err := h.students.Create(c.Context(), claims, student); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Update handles PUT /api/students/:id.
func (h *StudentsHandler) Update(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	claims, _ := auth.ClaimsFromContext(c)
	student := studentFromRequest(&req)
	student.ID = c.Params("id")
	if err := h.students.Update(c.Context(), claims, student); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStudentResponse(student)})
}

// Delete handles DELETE /api/students/:id.
func (h *StudentsHandler) Delete(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	if err := h.students.Delete(c.Context(), claims, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func studentFromRequest(req *dto.StudentRequest) *domain.Student {
	return &domain.Student{
		StudentNo: req.StudentNo,
		Name:      req.Name,
		Gender:    req.Gender,
		ClassName: req.ClassName,
		Phone:     req.Phone,
		Address:   req.Address,
	}
}
