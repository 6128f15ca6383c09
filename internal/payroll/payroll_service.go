package payroll

import (
	"context"
	"errors"
	"time"

	"go-payroll/internal/employment"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/payrule"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	// CalculateOne computes and persists all allocation lines for one
	// employment and pay period.
	CalculateOne(ctx context.Context, req CalculateRequest) (CalculateResponse, error)
	// Preview computes a filtered run without persisting anything.
	// Deterministic: same inputs and data produce the same output.
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	GetByPeriod(ctx context.Context, payPeriod string) ([]LineResponse, error)
}

type service struct {
	engine      *Engine
	employments employment.Repository
	rules       payrule.Provider
	logger      *zap.Logger
}

func NewService(
	engine *Engine,
	employments employment.Repository,
	rules payrule.Provider,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		engine:      engine,
		employments: employments,
		rules:       rules,
		logger:      l,
	}
}

func (s *service) CalculateOne(ctx context.Context, req CalculateRequest) (CalculateResponse, error) {
	employmentID, err := uuid.Parse(req.EmploymentID)
	if err != nil {
		return CalculateResponse{}, payrollerrors.ErrInvalidEmploymentID
	}

	payPeriod, err := ParsePayPeriod(req.PayPeriod)
	if err != nil {
		return CalculateResponse{}, err
	}

	rules, err := s.rules.ForPeriod(ctx, payPeriod)
	if err != nil {
		return CalculateResponse{}, err
	}

	_, results, warnings, err := s.engine.BuildLines(ctx, employmentID, payPeriod, rules)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CalculateResponse{}, payrollerrors.ErrEmploymentNotFound
		}
		return CalculateResponse{}, err
	}

	resp := CalculateResponse{
		EmploymentID: employmentID.String(),
		PayPeriod:    payPeriod.Format("2006-01-02"),
		Warnings:     warnings,
	}

	for _, result := range results {
		if result.Err != nil {
			return CalculateResponse{}, result.Err
		}
		if _, err := s.engine.Persist(ctx, result.Line); err != nil {
			return CalculateResponse{}, err
		}
		resp.Lines = append(resp.Lines, mapLineToResponse(result.Line))
	}

	return resp, nil
}

func (s *service) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	payPeriod, err := ParsePayPeriod(req.PayPeriod)
	if err != nil {
		return PreviewResponse{}, err
	}

	filter, err := ParseFilter(req.Filters)
	if err != nil {
		return PreviewResponse{}, err
	}

	rules, err := s.rules.ForPeriod(ctx, payPeriod)
	if err != nil {
		return PreviewResponse{}, err
	}

	employmentIDs, err := s.employments.ResolveIDs(ctx, filter)
	if err != nil {
		return PreviewResponse{}, err
	}

	s.logger.Debug("preview started",
		zap.String("request_id", rid),
		zap.String("pay_period", payPeriod.Format("2006-01-02")),
		zap.Int("employments", len(employmentIDs)),
	)

	resp := PreviewResponse{
		PayPeriod: payPeriod.Format("2006-01-02"),
		Summary:   PreviewSummary{Employments: len(employmentIDs)},
	}

	totalGross := decimal.Zero
	totalNet := decimal.Zero

	for _, employmentID := range employmentIDs {
		emp, results, warnings, err := s.engine.BuildLines(ctx, employmentID, payPeriod, rules)
		if err != nil {
			return PreviewResponse{}, err
		}

		resp.Warnings = append(resp.Warnings, warnings...)

		breakdown := EmployeeBreakdown{
			EmploymentID: employmentID.String(),
			StaffID:      emp.StaffID,
			EmployeeName: emp.EmployeeName,
		}

		for _, result := range results {
			if result.Err != nil {
				breakdown.Errors = append(breakdown.Errors, result.Err.Error())
				resp.Summary.ErrorCount++
				continue
			}

			rounded := result.Line.Rounded()
			breakdown.Lines = append(breakdown.Lines, mapLineToResponse(result.Line))
			resp.Summary.Lines++
			totalGross = totalGross.Add(rounded.GrossSalaryByFTE)
			totalNet = totalNet.Add(rounded.NetSalary)
			if rounded.NeedsAdvance {
				resp.Summary.AdvanceCount++
			}
		}

		resp.Breakdown = append(resp.Breakdown, breakdown)
	}

	resp.Summary.TotalGross = totalGross.StringFixed(2)
	resp.Summary.TotalNet = totalNet.StringFixed(2)

	return resp, nil
}

func (s *service) GetByPeriod(ctx context.Context, payPeriod string) ([]LineResponse, error) {
	period, err := ParsePayPeriod(payPeriod)
	if err != nil {
		return nil, err
	}

	rows, err := s.engine.payrolls.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	resp := make([]LineResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapRowToResponse(row)
	}
	return resp, nil
}

// ParsePayPeriod parses a calendar date (typically month-end).
func ParsePayPeriod(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidPayPeriod
	}
	return t, nil
}

// ParseFilter converts the wire filter into the repository filter.
func ParseFilter(req FilterRequest) (employment.Filter, error) {
	filter := employment.Filter{
		Subsidiaries:    req.Subsidiaries,
		EmploymentTypes: req.EmploymentTypes,
	}

	for _, raw := range req.DepartmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return employment.Filter{}, payrollerrors.ErrInvalidDepartmentID
		}
		filter.DepartmentIDs = append(filter.DepartmentIDs, id)
	}

	for _, raw := range req.GrantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return employment.Filter{}, payrollerrors.ErrInvalidGrantID
		}
		filter.GrantIDs = append(filter.GrantIDs, id)
	}

	return filter, nil
}
