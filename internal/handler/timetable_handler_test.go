package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulplan/timetable-engine/internal/dto"
	appErrors "github.com/okulplan/timetable-engine/pkg/errors"
)

type timetableReaderMock struct {
	classErr   error
	teacherErr error
}

func (m *timetableReaderMock) ClassWeek(ctx context.Context, classID string) (*dto.ClassTimetableResponse, error) {
	if m.classErr != nil {
		return nil, m.classErr
	}
	return &dto.ClassTimetableResponse{
		ClassID: classID,
		TermID:  "term-1",
		Cells:   []dto.TimetableCell{{Day: 0, TimeSlot: 0, LessonID: "math", LessonName: "Mathematics"}},
	}, nil
}

func (m *timetableReaderMock) TeacherWeek(ctx context.Context, teacherID string) (*dto.TeacherTimetableResponse, error) {
	if m.teacherErr != nil {
		return nil, m.teacherErr
	}
	return &dto.TeacherTimetableResponse{TeacherID: teacherID, TermID: "term-1"}, nil
}

func getWithID(t *testing.T, h gin.HandlerFunc, id string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: id}}
	h(c)
	return w
}

func TestClassWeekHandler(t *testing.T) {
	h := &TimetableHandler{service: &timetableReaderMock{}}

	w := getWithID(t, h.ClassWeek, "class-1")

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.ClassTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "class-1", envelope.Data.ClassID)
	require.Len(t, envelope.Data.Cells, 1)
	assert.Equal(t, "Mathematics", envelope.Data.Cells[0].LessonName)
}

func TestClassWeekHandlerNotFound(t *testing.T) {
	h := &TimetableHandler{service: &timetableReaderMock{
		classErr: appErrors.Clone(appErrors.ErrNotFound, "class not found"),
	}}

	w := getWithID(t, h.ClassWeek, "ghost")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeacherWeekHandler(t *testing.T) {
	h := &TimetableHandler{service: &timetableReaderMock{}}

	w := getWithID(t, h.TeacherWeek, "teacher-1")

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.TeacherTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "teacher-1", envelope.Data.TeacherID)
}

func TestTeacherWeekHandlerNotFound(t *testing.T) {
	h := &TimetableHandler{service: &timetableReaderMock{
		teacherErr: appErrors.Clone(appErrors.ErrNotFound, "teacher not found"),
	}}

	w := getWithID(t, h.TeacherWeek, "ghost")

	require.Equal(t, http.StatusNotFound, w.Code)
}
