package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/service"
	"procurement-portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubProcurementService lets each test pin the behavior of the one
// method the route under test calls.
type stubProcurementService struct {
	create        func(input service.CreateRequestInput) (service.ProcurementResponse, error)
	get           func(id string) (service.ProcurementResponse, error)
	list          func(filter service.RequestFilter) ([]service.ProcurementResponse, int64, error)
	submit        func(id string) (service.ProcurementResponse, error)
	reject        func(id string, input service.RejectInput) (service.ProcurementResponse, error)
	complete      func(id string) (service.ProcurementResponse, error)
	deleteRequest func(id string) error
}

func (s *stubProcurementService) Create(_ context.Context, _ string, input service.CreateRequestInput) (service.ProcurementResponse, error) {
	return s.create(input)
}

func (s *stubProcurementService) Update(_ context.Context, _, _ string, _ service.UpdateRequestInput) (service.ProcurementResponse, error) {
	return service.ProcurementResponse{}, nil
}

func (s *stubProcurementService) Get(_ context.Context, id string) (service.ProcurementResponse, error) {
	return s.get(id)
}

func (s *stubProcurementService) GetDraft(_ context.Context, id string) (service.ProcurementResponse, error) {
	return s.get(id)
}

func (s *stubProcurementService) List(_ context.Context, filter service.RequestFilter) ([]service.ProcurementResponse, int64, error) {
	return s.list(filter)
}

func (s *stubProcurementService) Submit(_ context.Context, _, id string) (service.ProcurementResponse, error) {
	return s.submit(id)
}

func (s *stubProcurementService) Approve(_ context.Context, _, _ string, _ service.ApproveInput) (service.ProcurementResponse, error) {
	return service.ProcurementResponse{}, nil
}

func (s *stubProcurementService) Reject(_ context.Context, _, id string, input service.RejectInput) (service.ProcurementResponse, error) {
	return s.reject(id, input)
}

func (s *stubProcurementService) MarkPurchased(_ context.Context, _, _ string) (service.ProcurementResponse, error) {
	return service.ProcurementResponse{}, nil
}

func (s *stubProcurementService) UploadProof(_ context.Context, _, _ string, _ service.ProofInput) (service.ProcurementResponse, error) {
	return service.ProcurementResponse{}, nil
}

func (s *stubProcurementService) Complete(_ context.Context, _, id string) (service.ProcurementResponse, error) {
	return s.complete(id)
}

func (s *stubProcurementService) Delete(_ context.Context, _, id string) error {
	return s.deleteRequest(id)
}

func (s *stubProcurementService) Archive(_ context.Context, _, _ string) error {
	return nil
}

// newTestRouter wires the handler methods directly, bypassing auth middleware
func newTestRouter(svc service.ProcurementService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProcurementHandler(svc)

	router := gin.New()
	router.GET("/procurement", h.ListRequests)
	router.GET("/procurement/:id", h.GetRequest)
	router.POST("/procurement", h.CreateRequest)
	router.DELETE("/procurement/:id", h.DeleteRequest)
	router.PATCH("/procurement/:id/submit", h.SubmitRequest)
	router.PATCH("/procurement/:id/reject", h.RejectRequest)
	router.PATCH("/procurement/:id/complete", h.CompleteRequest)
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var envelope response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateRequestReturns201(t *testing.T) {
	svc := &stubProcurementService{
		create: func(input service.CreateRequestInput) (service.ProcurementResponse, error) {
			return service.ProcurementResponse{ID: "abc", Title: input.Title, Status: "DRAFT", Amount: "250.0000"}, nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(gin.H{
		"title":         "Office supplies Q3",
		"allocation_id": "2e9b9972-5b8f-4f0f-9b39-9e6097a70001",
		"items": []gin.H{
			{"name": "Bond paper", "unit": "ream", "quantity": 2, "unit_cost": "100"},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/procurement", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
}

func TestCreateRequestRejectsMalformedBody(t *testing.T) {
	svc := &stubProcurementService{
		create: func(service.CreateRequestInput) (service.ProcurementResponse, error) {
			t.Fatal("service must not be called on a malformed body")
			return service.ProcurementResponse{}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/procurement", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Message)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation maps to 400", fmt.Errorf("%w: bad input", lifecycle.ErrValidation), http.StatusBadRequest},
		{"missing row maps to 404", fmt.Errorf("not found: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"illegal transition maps to 409", fmt.Errorf("%w: cannot submit", lifecycle.ErrInvalidTransition), http.StatusConflict},
		{"failed precondition maps to 422", fmt.Errorf("%w: no proof", lifecycle.ErrPrecondition), http.StatusUnprocessableEntity},
		{"unknown error maps to 500", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubProcurementService{
				submit: func(string) (service.ProcurementResponse, error) {
					return service.ProcurementResponse{}, tc.err
				},
			}
			router := newTestRouter(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/procurement/abc/submit", nil)
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			envelope := decodeEnvelope(t, rec)
			assert.False(t, envelope.Success)
		})
	}
}

func TestRejectPassesRemarksThrough(t *testing.T) {
	var gotRemarks string
	svc := &stubProcurementService{
		reject: func(_ string, input service.RejectInput) (service.ProcurementResponse, error) {
			gotRemarks = input.Remarks
			return service.ProcurementResponse{ID: "abc", Status: "REJECTED"}, nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(gin.H{"remarks": "duplicate order"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/procurement/abc/reject", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "duplicate order", gotRemarks)
}

func TestListWrapsItemsInEnvelope(t *testing.T) {
	svc := &stubProcurementService{
		list: func(filter service.RequestFilter) ([]service.ProcurementResponse, int64, error) {
			assert.Equal(t, "SUBMITTED", filter.Status)
			assert.Equal(t, 2, filter.Page)
			return []service.ProcurementResponse{{ID: "a"}, {ID: "b"}}, 12, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/procurement?status=SUBMITTED&page=2&limit=5", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool              `json:"success"`
		Data    response.ListData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.EqualValues(t, 12, envelope.Data.Total)
	assert.Equal(t, 2, envelope.Data.Page)
	assert.Equal(t, 5, envelope.Data.Limit)
}

func TestDeleteDraft(t *testing.T) {
	svc := &stubProcurementService{
		deleteRequest: func(id string) error {
			assert.Equal(t, "abc", id)
			return nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/procurement/abc", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRequestNotFound(t *testing.T) {
	svc := &stubProcurementService{
		get: func(string) (service.ProcurementResponse, error) {
			return service.ProcurementResponse{}, gorm.ErrRecordNotFound
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/procurement/missing", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteReturnsUpdatedRequest(t *testing.T) {
	svc := &stubProcurementService{
		complete: func(id string) (service.ProcurementResponse, error) {
			return service.ProcurementResponse{ID: id, Status: "COMPLETED"}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/procurement/abc/complete", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
}
