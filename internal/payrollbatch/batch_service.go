package payrollbatch

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/employment"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payroll"
	payrollbatcherrors "go-payroll/internal/payrollbatch/errors"
	"go-payroll/internal/payrule"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const processChunkSize = 100

//go:generate mockgen -source=batch_service.go -destination=mock/batch_service_mock.go -package=mock
type Service interface {
	// Create registers the batch and enqueues the run request through
	// the outbox, both in one transaction.
	Create(ctx context.Context, req CreateBatchRequest) (CreateBatchResponse, error)
	// Process executes a batch run. One failing employment never stops
	// the others; the batch row carries the running progress.
	Process(ctx context.Context, batchID string) error
	GetStatus(ctx context.Context, batchID string) (StatusResponse, error)
	ListErrors(ctx context.Context, batchID string) ([]ErrorResponse, error)
	ErrorsCSV(ctx context.Context, batchID string) ([]byte, error)
	Cancel(ctx context.Context, batchID string) error
}

type service struct {
	db          *sql.DB
	batches     Repository
	outbox      kafka.OutboxRepository
	engine      *payroll.Engine
	employments employment.Repository
	rules       payrule.Provider
	cancel      CancelFlag
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	batches Repository,
	outbox kafka.OutboxRepository,
	engine *payroll.Engine,
	employments employment.Repository,
	rules payrule.Provider,
	cancel CancelFlag,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payrollbatch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollbatch.service")
	}
	return &service{
		db:          db,
		batches:     batches,
		outbox:      outbox,
		engine:      engine,
		employments: employments,
		rules:       rules,
		cancel:      cancel,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, req CreateBatchRequest) (CreateBatchResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	payPeriod, err := payroll.ParsePayPeriod(req.PayPeriod)
	if err != nil {
		return CreateBatchResponse{}, err
	}

	filter, err := payroll.ParseFilter(req.Filters)
	if err != nil {
		return CreateBatchResponse{}, err
	}

	// Fail fast: a period with no tax brackets or benefit settings can
	// never produce a line, so reject before anything is enqueued.
	if _, err := s.rules.ForPeriod(ctx, payPeriod); err != nil {
		return CreateBatchResponse{}, err
	}

	employmentIDs, err := s.employments.ResolveIDs(ctx, filter)
	if err != nil {
		return CreateBatchResponse{}, err
	}
	if len(employmentIDs) == 0 {
		return CreateBatchResponse{}, payrollbatcherrors.ErrNoEmploymentsMatched
	}

	filterJSON, err := json.Marshal(req.Filters)
	if err != nil {
		return CreateBatchResponse{}, err
	}

	batch := &Batch{
		ID:         uuid.NewString(),
		PayPeriod:  payPeriod,
		FilterJSON: filterJSON,
		TotalCount: len(employmentIDs),
		Status:     StatusPending,
	}

	ids := make([]string, len(employmentIDs))
	for i, id := range employmentIDs {
		ids[i] = id.String()
	}

	payload, err := json.Marshal(events.PayrollBatchRequestedEvent{
		EventType:     "payroll.batch.requested",
		BatchID:       batch.ID,
		PayPeriod:     payPeriod.Format("2006-01-02"),
		EmploymentIDs: ids,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return CreateBatchResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CreateBatchResponse{}, err
	}
	defer tx.Rollback()

	if err := s.batches.WithTx(tx).Create(ctx, batch); err != nil {
		return CreateBatchResponse{}, err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_batch",
		AggregateID:   batch.ID,
		EventType:     "payroll.batch.requested",
		Topic:         events.PayrollBatchRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return CreateBatchResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return CreateBatchResponse{}, err
	}

	s.logger.Info("batch created",
		zap.String("request_id", rid),
		zap.String("batch_id", batch.ID),
		zap.String("pay_period", payPeriod.Format("2006-01-02")),
		zap.Int("total", batch.TotalCount),
	)

	return CreateBatchResponse{
		BatchID:   batch.ID,
		PayPeriod: payPeriod.Format("2006-01-02"),
		Total:     batch.TotalCount,
		Status:    batch.Status,
	}, nil
}

func (s *service) Process(ctx context.Context, batchID string) error {
	if _, err := uuid.Parse(batchID); err != nil {
		return payrollbatcherrors.ErrInvalidBatchID
	}

	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payrollbatcherrors.ErrBatchNotFound
		}
		return err
	}

	if isTerminal(batch.Status) {
		// Redelivered or replayed request for a finished batch.
		s.logger.Info("batch already terminal, skipping",
			zap.String("batch_id", batch.ID),
			zap.String("status", batch.Status),
		)
		return nil
	}

	var req payroll.FilterRequest
	if err := json.Unmarshal(batch.FilterJSON, &req); err != nil {
		return s.fail(ctx, batch.ID, "stored filter is unreadable: "+err.Error())
	}
	filter, err := payroll.ParseFilter(req)
	if err != nil {
		return s.fail(ctx, batch.ID, "stored filter is invalid: "+err.Error())
	}

	// Rules missing for the whole period is unrecoverable: no
	// employment in the batch could produce a line.
	rules, err := s.rules.ForPeriod(ctx, batch.PayPeriod)
	if err != nil {
		if payrule.IsConfigMissing(err) {
			return s.fail(ctx, batch.ID, err.Error())
		}
		return err
	}

	employmentIDs, err := s.employments.ResolveIDs(ctx, filter)
	if err != nil {
		return err
	}

	if err := s.batches.MarkProcessing(ctx, batch.ID); err != nil {
		return err
	}
	if err := s.batches.ResetProgress(ctx, batch.ID, len(employmentIDs)); err != nil {
		return err
	}

	s.logger.Info("batch processing started",
		zap.String("batch_id", batch.ID),
		zap.String("pay_period", batch.PayPeriod.Format("2006-01-02")),
		zap.Int("total", len(employmentIDs)),
	)

	failedCount := 0
	cancelled := false

processing:
	for start := 0; start < len(employmentIDs); start += processChunkSize {
		end := start + processChunkSize
		if end > len(employmentIDs) {
			end = len(employmentIDs)
		}

		for _, employmentID := range employmentIDs[start:end] {
			set, err := s.cancel.IsSet(ctx, batch.ID)
			if err != nil {
				s.logger.Warn("cancel flag check failed",
					zap.String("batch_id", batch.ID),
					zap.Error(err),
				)
			} else if set {
				cancelled = true
				break processing
			}

			ok, err := s.processEmployment(ctx, batch, employmentID, rules)
			if err != nil {
				return err
			}
			if !ok {
				failedCount++
			}
			if err := s.batches.IncrementProgress(ctx, batch.ID, ok); err != nil {
				return err
			}
		}
	}

	status := StatusCompleted
	var reason *string
	switch {
	case cancelled:
		status = StatusCompletedWithErrors
		msg := "cancelled by user"
		reason = &msg
		if err := s.cancel.Clear(ctx, batch.ID); err != nil {
			s.logger.Warn("cancel flag clear failed",
				zap.String("batch_id", batch.ID),
				zap.Error(err),
			)
		}
	case failedCount > 0:
		status = StatusCompletedWithErrors
	}

	if err := s.batches.Finalize(ctx, batch.ID, status, reason); err != nil {
		return err
	}

	s.logger.Info("batch processing finished",
		zap.String("batch_id", batch.ID),
		zap.String("status", status),
		zap.Int("failed", failedCount),
	)

	s.publishCompleted(ctx, batch, status, len(employmentIDs), failedCount)
	return nil
}

// processEmployment runs one employment end to end and reports whether
// every one of its allocation lines was computed and persisted.
func (s *service) processEmployment(
	ctx context.Context,
	batch *Batch,
	employmentID uuid.UUID,
	rules payrule.RuleSet,
) (bool, error) {
	emp, results, warnings, err := s.engine.BuildLines(ctx, employmentID, batch.PayPeriod, rules)
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		recordErr := s.batches.RecordError(ctx, BatchError{
			ID:           uuid.NewString(),
			BatchID:      batch.ID,
			EmploymentID: employmentID.String(),
			StaffID:      emp.StaffID,
			EmployeeName: emp.EmployeeName,
			Message:      err.Error(),
		})
		if recordErr != nil {
			return false, recordErr
		}
		return false, nil
	}

	for _, w := range warnings {
		s.logger.Warn("allocation warning",
			zap.String("batch_id", batch.ID),
			zap.String("employment_id", employmentID.String()),
			zap.String("warning", w),
		)
	}

	ok := true
	for _, result := range results {
		lineErr := result.Err
		if lineErr == nil {
			_, lineErr = s.engine.Persist(ctx, result.Line)
		}
		if lineErr == nil {
			continue
		}
		if ctx.Err() != nil {
			return false, lineErr
		}

		ok = false
		allocationID := result.AllocationID.String()
		recordErr := s.batches.RecordError(ctx, BatchError{
			ID:           uuid.NewString(),
			BatchID:      batch.ID,
			EmploymentID: employmentID.String(),
			StaffID:      emp.StaffID,
			EmployeeName: emp.EmployeeName,
			AllocationID: &allocationID,
			Message:      lineErr.Error(),
		})
		if recordErr != nil {
			return false, recordErr
		}
	}

	return ok, nil
}

func (s *service) fail(ctx context.Context, batchID string, reason string) error {
	s.logger.Error("batch failed",
		zap.String("batch_id", batchID),
		zap.String("reason", reason),
	)
	return s.batches.Finalize(ctx, batchID, StatusFailed, &reason)
}

func (s *service) publishCompleted(ctx context.Context, batch *Batch, status string, total, failed int) {
	payload, err := json.Marshal(events.PayrollBatchCompletedEvent{
		EventType:  "payroll.batch.completed",
		BatchID:    batch.ID,
		PayPeriod:  batch.PayPeriod.Format("2006-01-02"),
		Status:     status,
		Total:      total,
		Successful: total - failed,
		Failed:     failed,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("completed event marshal failed",
			zap.String("batch_id", batch.ID),
			zap.Error(err),
		)
		return
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "payroll_batch",
		AggregateID:   batch.ID,
		EventType:     "payroll.batch.completed",
		Topic:         events.PayrollBatchCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error("completed event enqueue failed",
			zap.String("batch_id", batch.ID),
			zap.Error(err),
		)
	}
}

func (s *service) GetStatus(ctx context.Context, batchID string) (StatusResponse, error) {
	batch, err := s.find(ctx, batchID)
	if err != nil {
		return StatusResponse{}, err
	}
	return mapBatchToStatus(batch), nil
}

func (s *service) ListErrors(ctx context.Context, batchID string) ([]ErrorResponse, error) {
	if _, err := s.find(ctx, batchID); err != nil {
		return nil, err
	}

	batchErrors, err := s.batches.ListErrors(ctx, batchID)
	if err != nil {
		return nil, err
	}

	resp := make([]ErrorResponse, len(batchErrors))
	for i, e := range batchErrors {
		resp[i] = mapErrorToResponse(e)
	}
	return resp, nil
}

func (s *service) ErrorsCSV(ctx context.Context, batchID string) ([]byte, error) {
	batchErrors, err := s.ListErrors(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"employment_id", "staff_id", "employee_name", "allocation_id", "error"}); err != nil {
		return nil, err
	}
	for _, e := range batchErrors {
		allocation := ""
		if e.AllocationID != nil {
			allocation = *e.AllocationID
		}
		record := []string{e.EmploymentID, e.StaffID, e.EmployeeName, allocation, e.Message}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *service) Cancel(ctx context.Context, batchID string) error {
	batch, err := s.find(ctx, batchID)
	if err != nil {
		return err
	}
	if isTerminal(batch.Status) {
		return payrollbatcherrors.ErrBatchAlreadyTerminal
	}
	return s.cancel.Set(ctx, batch.ID)
}

func (s *service) find(ctx context.Context, batchID string) (*Batch, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, payrollbatcherrors.ErrInvalidBatchID
	}
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payrollbatcherrors.ErrBatchNotFound
		}
		return nil, err
	}
	return batch, nil
}
