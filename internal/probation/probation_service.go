package probation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	probationerrors "go-payroll/internal/probation/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepReport summarizes one daily probation sweep.
type SweepReport struct {
	Checked      int
	Transitioned int
	Failed       int
}

//go:generate mockgen -source=probation_service.go -destination=mock/probation_service_mock.go -package=mock
type Service interface {
	// Sweep transitions every employment whose probation pass date has
	// arrived. Each employment commits in its own transaction, so one
	// failure never blocks the rest of the day's transitions.
	Sweep(ctx context.Context, today time.Time) (SweepReport, error)
	Extend(ctx context.Context, req ExtendRequest) (RecordResponse, error)
}

type service struct {
	db          *gorm.DB
	records     Repository
	allocations allocation.Repository
	employments employment.Repository
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	records Repository,
	allocations allocation.Repository,
	employments employment.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("probation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("probation.service")
	}
	return &service{
		db:          db,
		records:     records,
		allocations: allocations,
		employments: employments,
		outbox:      outbox,
		logger:      l,
	}
}

func (s *service) Sweep(ctx context.Context, today time.Time) (SweepReport, error) {
	due, err := s.employments.FindDueProbation(ctx, today)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Checked: len(due)}
	for _, emp := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.transition(ctx, emp); err != nil {
			// Another worker replica finished this employment first.
			if isActiveRecordConflict(err) {
				s.logger.Warn("probation record already transitioned, skipping",
					zap.String("employment_id", emp.ID.String()),
				)
				continue
			}
			report.Failed++
			s.logger.Error("probation transition failed",
				zap.String("employment_id", emp.ID.String()),
				zap.String("staff_id", emp.StaffID),
				zap.Error(err),
			)
			continue
		}
		report.Transitioned++
		s.publishPassed(ctx, emp)
	}

	s.logger.Info("probation sweep finished",
		zap.String("date", today.Format("2006-01-02")),
		zap.Int("checked", report.Checked),
		zap.Int("transitioned", report.Transitioned),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// transition closes the probation period for one employment: the active
// probation record becomes a passed event, and every probation-salary
// allocation is superseded by a pass-probation copy. All or nothing.
func (s *service) transition(ctx context.Context, emp employment.View) error {
	passDate := emp.StartDate
	if emp.PassProbationDate != nil {
		passDate = *emp.PassProbationDate
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)
		allocations := s.allocations.WithTx(tx)

		prior, err := records.FindActiveByEmployment(ctx, emp.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		passed := ProbationRecord{
			EmploymentID: emp.ID,
			EventType:    EventPassed,
			StartDate:    emp.StartDate,
			EndDate:      &passDate,
			IsActive:     true,
		}
		if prior != nil {
			if err := records.Deactivate(ctx, prior.ID); err != nil {
				return err
			}
			passed.ExtensionNumber = prior.ExtensionNumber
			passed.StartDate = prior.StartDate
		}
		if err := records.Create(ctx, &passed); err != nil {
			return err
		}

		probationAllocs, err := allocations.FindActiveProbationSalary(ctx, emp.ID)
		if err != nil {
			return err
		}
		if len(probationAllocs) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(probationAllocs))
		for i, a := range probationAllocs {
			ids[i] = a.ID
		}
		if err := allocations.MarkHistorical(ctx, ids, passDate.AddDate(0, 0, -1)); err != nil {
			return err
		}

		for _, old := range probationAllocs {
			next := allocation.FundingAllocation{
				EmployeeID:       old.EmployeeID,
				EmploymentID:     old.EmploymentID,
				GrantItemID:      old.GrantItemID,
				OrgFundedGrantID: old.OrgFundedGrantID,
				AllocationType:   old.AllocationType,
				FTE:              old.FTE,
				SalaryType:       allocation.SalaryTypePassProbation,
				AllocatedAmount:  emp.PassProbationSalary.Mul(old.FTE),
				Status:           allocation.StatusActive,
				StartDate:        passDate,
			}
			if err := allocations.Create(ctx, &next); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) publishPassed(ctx context.Context, emp employment.View) {
	passedOn := ""
	if emp.PassProbationDate != nil {
		passedOn = emp.PassProbationDate.Format("2006-01-02")
	}

	payload, err := json.Marshal(events.ProbationPassedEvent{
		EventType:    "employment.probation.passed",
		EmploymentID: emp.ID.String(),
		EmployeeID:   emp.EmployeeID.String(),
		PassedOn:     passedOn,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("probation event marshal failed",
			zap.String("employment_id", emp.ID.String()),
			zap.Error(err),
		)
		return
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "employment",
		AggregateID:   emp.ID.String(),
		EventType:     "employment.probation.passed",
		Topic:         events.ProbationPassedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error("probation event enqueue failed",
			zap.String("employment_id", emp.ID.String()),
			zap.Error(err),
		)
	}
}

func isActiveRecordConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_probation_record_active"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_probation_record_active")
}

func (s *service) Extend(ctx context.Context, req ExtendRequest) (RecordResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	employmentID, err := uuid.Parse(req.EmploymentID)
	if err != nil {
		return RecordResponse{}, probationerrors.ErrInvalidEmploymentID
	}
	newEnd, err := time.Parse("2006-01-02", req.NewEndDate)
	if err != nil {
		return RecordResponse{}, probationerrors.ErrInvalidEndDate
	}

	var extension ProbationRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)

		prior, err := records.FindActiveByEmployment(ctx, employmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return probationerrors.ErrProbationNotFound
			}
			return err
		}
		if prior.EventType == EventPassed || prior.EventType == EventFailed {
			return probationerrors.ErrProbationClosed
		}

		if err := records.Deactivate(ctx, prior.ID); err != nil {
			return err
		}

		extension = ProbationRecord{
			EmploymentID:    employmentID,
			EventType:       EventExtension,
			ExtensionNumber: prior.ExtensionNumber + 1,
			StartDate:       prior.StartDate,
			EndDate:         &newEnd,
			IsActive:        true,
			Notes:           req.Notes,
		}
		if err := records.Create(ctx, &extension); err != nil {
			return err
		}

		return records.ShiftPassDate(ctx, employmentID, newEnd)
	})
	if err != nil {
		return RecordResponse{}, err
	}

	s.logger.Info("probation extended",
		zap.String("request_id", rid),
		zap.String("employment_id", employmentID.String()),
		zap.Int("extension_number", extension.ExtensionNumber),
		zap.String("new_end_date", newEnd.Format("2006-01-02")),
	)
	return mapRecordToResponse(extension), nil
}
