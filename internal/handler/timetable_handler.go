package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulplan/timetable-engine/internal/dto"
	"github.com/okulplan/timetable-engine/internal/service"
	"github.com/okulplan/timetable-engine/pkg/response"
)

type timetableReader interface {
	ClassWeek(ctx context.Context, classID string) (*dto.ClassTimetableResponse, error)
	TeacherWeek(ctx context.Context, teacherID string) (*dto.TeacherTimetableResponse, error)
}

// TimetableHandler exposes the persisted weekly views.
type TimetableHandler struct {
	service timetableReader
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ClassWeek godoc
// @Summary Weekly timetable of a class
// @Tags Timetable
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/class/{id} [get]
func (h *TimetableHandler) ClassWeek(c *gin.Context) {
	result, err := h.service.ClassWeek(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// TeacherWeek godoc
// @Summary Weekly timetable of a teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/teacher/{id} [get]
func (h *TimetableHandler) TeacherWeek(c *gin.Context) {
	result, err := h.service.TeacherWeek(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
