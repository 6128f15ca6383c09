package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	calculateOneFn func(ctx context.Context, req payroll.CalculateRequest) (payroll.CalculateResponse, error)
	previewFn      func(ctx context.Context, req payroll.PreviewRequest) (payroll.PreviewResponse, error)
	getByPeriodFn  func(ctx context.Context, payPeriod string) ([]payroll.LineResponse, error)
}

func (f *fakePayrollService) CalculateOne(ctx context.Context, req payroll.CalculateRequest) (payroll.CalculateResponse, error) {
	return f.calculateOneFn(ctx, req)
}

func (f *fakePayrollService) Preview(ctx context.Context, req payroll.PreviewRequest) (payroll.PreviewResponse, error) {
	return f.previewFn(ctx, req)
}

func (f *fakePayrollService) GetByPeriod(ctx context.Context, payPeriod string) ([]payroll.LineResponse, error) {
	return f.getByPeriodFn(ctx, payPeriod)
}

func TestPayrollHandler_Calculate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	employmentID := uuid.NewString()
	svc := &fakePayrollService{
		calculateOneFn: func(ctx context.Context, req payroll.CalculateRequest) (payroll.CalculateResponse, error) {
			assert.Equal(t, employmentID, req.EmploymentID)
			assert.Equal(t, "2026-03-31", req.PayPeriod)
			return payroll.CalculateResponse{
				EmploymentID: req.EmploymentID,
				PayPeriod:    req.PayPeriod,
				Lines:        []payroll.LineResponse{{EmploymentID: req.EmploymentID}},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost,
		"/api/v1/payrolls/calculate",
		strings.NewReader(`{"employment_id":"`+employmentID+`","pay_period":"2026-03-31"}`),
	)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Calculate(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_CalculateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := payroll.NewHandler(&fakePayrollService{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost,
		"/api/v1/payrolls/calculate",
		strings.NewReader(`{"pay_period":"2026-03-31"}`),
	)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.NotNil(t, env.Error)
}

func TestPayrollHandler_CalculateServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayrollService{
		calculateOneFn: func(ctx context.Context, req payroll.CalculateRequest) (payroll.CalculateResponse, error) {
			return payroll.CalculateResponse{}, payrollerrors.ErrEmploymentNotFound
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost,
		"/api/v1/payrolls/calculate",
		strings.NewReader(`{"employment_id":"`+uuid.NewString()+`","pay_period":"2026-03-31"}`),
	)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Calculate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
}

func TestPayrollHandler_GetByPeriodRequiresQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := payroll.NewHandler(&fakePayrollService{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payrolls", nil)

	h.GetByPeriod(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayrollHandler_Preview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakePayrollService{
		previewFn: func(ctx context.Context, req payroll.PreviewRequest) (payroll.PreviewResponse, error) {
			assert.Equal(t, []string{"SMRU"}, req.Filters.Subsidiaries)
			return payroll.PreviewResponse{
				PayPeriod: req.PayPeriod,
				Summary:   payroll.PreviewSummary{Employments: 2, Lines: 3},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost,
		"/api/v1/payrolls/preview",
		strings.NewReader(`{"pay_period":"2026-03-31","filters":{"subsidiaries":["SMRU"]}}`),
	)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}
