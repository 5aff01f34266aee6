package handler

import (
	"bytes"
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

type scheduleGeneratorMock struct {
	captured   dto.GenerateScheduleRequest
	saveErr    error
	getErr     error
	savedCount int
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	return &dto.GenerateScheduleResponse{ProposalID: "proposal-1", TermID: req.TermID}, nil
}

func (m *scheduleGeneratorMock) GenerateAsync(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleAsyncResponse, error) {
	m.captured = req
	return &dto.GenerateScheduleAsyncResponse{JobID: "job-1", TermID: req.TermID, Status: "PENDING"}, nil
}

func (m *scheduleGeneratorMock) GetProposal(ctx context.Context, proposalID string) (*dto.GenerateScheduleResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.GenerateScheduleResponse{ProposalID: proposalID}, nil
}

func (m *scheduleGeneratorMock) Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &dto.SaveScheduleResponse{TermID: "term-1", SavedEntries: m.savedCount}, nil
}

func postJSON(t *testing.T, h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func TestGenerateHandlerSuccess(t *testing.T) {
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	w := postJSON(t, h.Generate, `{"termId":"term-1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term-1", mockSvc.captured.TermID)

	var envelope struct {
		Data dto.GenerateScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "proposal-1", envelope.Data.ProposalID)
}

func TestGenerateHandlerMalformedBody(t *testing.T) {
	h := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}

	w := postJSON(t, h.Generate, `{"termId":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateAsyncHandlerAccepted(t *testing.T) {
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	w := postJSON(t, h.GenerateAsync, `{"termId":"term-1"}`)

	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestGetProposalHandlerNotFound(t *testing.T) {
	mockSvc := &scheduleGeneratorMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	h.GetProposal(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveHandlerCreated(t *testing.T) {
	mockSvc := &scheduleGeneratorMock{savedCount: 30}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	w := postJSON(t, h.Save, `{"proposalId":"proposal-1"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.SaveScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 30, envelope.Data.SavedEntries)
}

func TestSaveHandlerConflict(t *testing.T) {
	mockSvc := &scheduleGeneratorMock{saveErr: appErrors.Clone(appErrors.ErrConflict, "proposal contains unresolved conflicts")}
	h := &ScheduleGeneratorHandler{service: mockSvc}

	w := postJSON(t, h.Save, `{"proposalId":"proposal-1"}`)

	require.Equal(t, http.StatusConflict, w.Code)
}
