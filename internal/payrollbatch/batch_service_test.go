package payrollbatch_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payroll"
	"go-payroll/internal/payrollbatch"
	payrollbatcherrors "go-payroll/internal/payrollbatch/errors"
	"go-payroll/internal/payrule"
	payruleerrors "go-payroll/internal/payrule/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func testRules() payrule.RuleSet {
	return payrule.RuleSet{
		Year: 2026,
		Brackets: []payrule.TaxBracket{
			{BracketOrder: 1, MinIncome: dec("0"), MaxIncome: decPtr("20000"), Rate: dec("0")},
			{BracketOrder: 2, MinIncome: dec("20000"), MaxIncome: nil, Rate: dec("0.05")},
		},
		SocialSecurityRate:         dec("0.05"),
		SocialSecurityCap:          dec("15000"),
		HealthWelfareThresholdHigh: dec("30000"),
		HealthWelfareThresholdMed:  dec("15000"),
		HealthWelfareAmountHigh:    dec("300"),
		HealthWelfareAmountMed:     dec("200"),
		HealthWelfareAmountLow:     dec("100"),
		ProvidentFundRate:          dec("0.03"),
		SavingFundRate:             dec("0.02"),
	}
}

// --- fakes ---

type fakeBatchRepository struct {
	mu       sync.Mutex
	batches  map[string]*payrollbatch.Batch
	errs     []payrollbatch.BatchError
	final    string
	reason   *string
	resetRan bool

	processed  int
	successful int
	failed     int
}

func newFakeBatchRepository() *fakeBatchRepository {
	return &fakeBatchRepository{batches: map[string]*payrollbatch.Batch{}}
}

func (f *fakeBatchRepository) WithTx(tx *sql.Tx) payrollbatch.Repository { return f }

func (f *fakeBatchRepository) Create(ctx context.Context, batch *payrollbatch.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeBatchRepository) FindByID(ctx context.Context, id string) (*payrollbatch.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBatchRepository) MarkProcessing(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches[id].Status = payrollbatch.StatusProcessing
	return nil
}

func (f *fakeBatchRepository) ResetProgress(ctx context.Context, id string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetRan = true
	f.processed, f.successful, f.failed = 0, 0, 0
	f.errs = nil
	f.batches[id].TotalCount = total
	return nil
}

func (f *fakeBatchRepository) IncrementProgress(ctx context.Context, id string, successful bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed++
	if successful {
		f.successful++
	} else {
		f.failed++
	}
	return nil
}

func (f *fakeBatchRepository) RecordError(ctx context.Context, e payrollbatch.BatchError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, e)
	return nil
}

func (f *fakeBatchRepository) Finalize(ctx context.Context, id string, status string, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.final = status
	f.reason = reason
	f.batches[id].Status = status
	return nil
}

func (f *fakeBatchRepository) ListErrors(ctx context.Context, batchID string) ([]payrollbatch.BatchError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]payrollbatch.BatchError(nil), f.errs...), nil
}

type fakeOutboxRepository struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeEmploymentRepository struct {
	views      map[uuid.UUID]employment.View
	resolveIDs []uuid.UUID
}

func (f *fakeEmploymentRepository) FindViewByID(ctx context.Context, id uuid.UUID) (employment.View, error) {
	v, ok := f.views[id]
	if !ok {
		return employment.View{}, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeEmploymentRepository) ResolveIDs(ctx context.Context, filter employment.Filter) ([]uuid.UUID, error) {
	return f.resolveIDs, nil
}

func (f *fakeEmploymentRepository) FindDueProbation(ctx context.Context, onDate time.Time) ([]employment.View, error) {
	return nil, nil
}

type fakeAllocationRepository struct {
	byEmployment map[uuid.UUID][]allocation.FundingAllocation
}

func (f *fakeAllocationRepository) WithTx(tx *gorm.DB) allocation.Repository { return f }

func (f *fakeAllocationRepository) FindActiveByEmployment(ctx context.Context, employmentID uuid.UUID, onDate time.Time) ([]allocation.FundingAllocation, error) {
	return f.byEmployment[employmentID], nil
}

func (f *fakeAllocationRepository) FindActiveProbationSalary(ctx context.Context, employmentID uuid.UUID) ([]allocation.FundingAllocation, error) {
	return nil, nil
}

func (f *fakeAllocationRepository) MarkHistorical(ctx context.Context, ids []uuid.UUID, endDate time.Time) error {
	return nil
}

func (f *fakeAllocationRepository) Create(ctx context.Context, alloc *allocation.FundingAllocation) error {
	return nil
}

type fakeGrantRepository struct{}

func (f *fakeGrantRepository) OrganizationByGrant(ctx context.Context, grantID uuid.UUID) (string, error) {
	return "BHF", nil
}

func (f *fakeGrantRepository) OrganizationByGrantItem(ctx context.Context, grantItemID uuid.UUID) (string, error) {
	return "BHF", nil
}

type fakePayrollRepository struct {
	mu       sync.Mutex
	upserted []payroll.Payroll
	failFor  map[uuid.UUID]bool
}

func (f *fakePayrollRepository) Upsert(ctx context.Context, row *payroll.Payroll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[row.EmploymentID] {
		return errors.New("insert payroll: connection reset")
	}
	f.upserted = append(f.upserted, *row)
	return nil
}

func (f *fakePayrollRepository) FindByPeriod(ctx context.Context, payPeriod time.Time) ([]payroll.Payroll, error) {
	return nil, nil
}

func (f *fakePayrollRepository) FindByEmploymentAndPeriod(ctx context.Context, employmentID uuid.UUID, payPeriod time.Time) ([]payroll.Payroll, error) {
	return nil, nil
}

func (f *fakePayrollRepository) SumThirteenMonthAccrued(ctx context.Context, allocationID uuid.UUID, payPeriod time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type fakeRuleProvider struct {
	err error
}

func (f *fakeRuleProvider) ForPeriod(ctx context.Context, payPeriod time.Time) (payrule.RuleSet, error) {
	if f.err != nil {
		return payrule.RuleSet{}, f.err
	}
	return testRules(), nil
}

type fakeCancelFlag struct {
	mu      sync.Mutex
	set     bool
	cleared bool
}

func (f *fakeCancelFlag) Set(ctx context.Context, batchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = true
	return nil
}

func (f *fakeCancelFlag) IsSet(ctx context.Context, batchID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set, nil
}

func (f *fakeCancelFlag) Clear(ctx context.Context, batchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = false
	f.cleared = true
	return nil
}

// --- fixture ---

type batchFixture struct {
	service     payrollbatch.Service
	batches     *fakeBatchRepository
	outbox      *fakeOutboxRepository
	employments *fakeEmploymentRepository
	payrolls    *fakePayrollRepository
	rules       *fakeRuleProvider
	cancel      *fakeCancelFlag
	mock        sqlmock.Sqlmock
}

func newBatchFixture(t *testing.T, employmentCount int) *batchFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	employments := &fakeEmploymentRepository{views: map[uuid.UUID]employment.View{}}
	allocations := &fakeAllocationRepository{byEmployment: map[uuid.UUID][]allocation.FundingAllocation{}}
	payrolls := &fakePayrollRepository{failFor: map[uuid.UUID]bool{}}

	for i := 0; i < employmentCount; i++ {
		employmentID := uuid.New()
		employments.resolveIDs = append(employments.resolveIDs, employmentID)
		employments.views[employmentID] = employment.View{
			ID:                  employmentID,
			EmployeeID:          uuid.New(),
			StaffID:             "EMP-" + employmentID.String()[:8],
			EmployeeName:        "Employee " + employmentID.String()[:8],
			Subsidiary:          "SMRU",
			StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PassProbationSalary: dec("50000"),
			PassProbationDate:   timePtr(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		}
		grantItemID := uuid.New()
		allocations.byEmployment[employmentID] = []allocation.FundingAllocation{{
			ID:             uuid.New(),
			EmploymentID:   employmentID,
			GrantItemID:    &grantItemID,
			AllocationType: allocation.TypeGrant,
			FTE:            dec("1"),
			SalaryType:     allocation.SalaryTypePassProbation,
			Status:         allocation.StatusActive,
			StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}}
	}

	batches := newFakeBatchRepository()
	outbox := &fakeOutboxRepository{}
	rules := &fakeRuleProvider{}
	cancel := &fakeCancelFlag{}
	engine := payroll.NewEngine(employments, allocations, &fakeGrantRepository{}, payrolls)

	service := payrollbatch.NewService(db, batches, outbox, engine, employments, rules, cancel)

	return &batchFixture{
		service:     service,
		batches:     batches,
		outbox:      outbox,
		employments: employments,
		payrolls:    payrolls,
		rules:       rules,
		cancel:      cancel,
		mock:        mock,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func (fx *batchFixture) seedBatch(status string) *payrollbatch.Batch {
	batch := &payrollbatch.Batch{
		ID:         uuid.NewString(),
		PayPeriod:  time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		FilterJSON: []byte(`{}`),
		TotalCount: len(fx.employments.resolveIDs),
		Status:     status,
	}
	fx.batches.batches[batch.ID] = batch
	return batch
}

// --- tests ---

func TestCreateBatchWritesBatchAndOutboxInOneTx(t *testing.T) {
	fx := newBatchFixture(t, 3)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.service.Create(context.Background(), payrollbatch.CreateBatchRequest{
		PayPeriod: "2026-03-31",
	})

	assert.NoError(t, err)
	assert.Equal(t, payrollbatch.StatusPending, resp.Status)
	assert.Equal(t, 3, resp.Total)
	assert.NotEmpty(t, resp.BatchID)

	assert.Len(t, fx.outbox.events, 1)
	assert.Equal(t, "payroll.batch.requested", fx.outbox.events[0].EventType)
	assert.Equal(t, resp.BatchID, fx.outbox.events[0].AggregateID)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestCreateBatchRejectsEmptyFilterMatch(t *testing.T) {
	fx := newBatchFixture(t, 0)

	_, err := fx.service.Create(context.Background(), payrollbatch.CreateBatchRequest{
		PayPeriod: "2026-03-31",
	})

	assert.ErrorIs(t, err, payrollbatcherrors.ErrNoEmploymentsMatched)
}

func TestCreateBatchRejectsMissingConfiguration(t *testing.T) {
	fx := newBatchFixture(t, 3)
	fx.rules.err = payruleerrors.MissingTaxBrackets(2026)

	_, err := fx.service.Create(context.Background(), payrollbatch.CreateBatchRequest{
		PayPeriod: "2026-03-31",
	})

	assert.Error(t, err)
	assert.True(t, payrule.IsConfigMissing(err))
}

func TestProcessPartialFailureIsolation(t *testing.T) {
	fx := newBatchFixture(t, 5)
	batch := fx.seedBatch(payrollbatch.StatusPending)

	// Two employments hit a persistence failure; the other three go through.
	fx.payrolls.failFor[fx.employments.resolveIDs[1]] = true
	fx.payrolls.failFor[fx.employments.resolveIDs[3]] = true

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.Equal(t, 5, fx.batches.processed)
	assert.Equal(t, 3, fx.batches.successful)
	assert.Equal(t, 2, fx.batches.failed)
	assert.Equal(t, payrollbatch.StatusCompletedWithErrors, fx.batches.final)
	assert.Len(t, fx.batches.errs, 2)
	assert.Len(t, fx.payrolls.upserted, 3)

	for _, e := range fx.batches.errs {
		assert.NotNil(t, e.AllocationID)
		assert.Contains(t, e.Message, "connection reset")
	}
}

func TestProcessAllSuccessfulCompletes(t *testing.T) {
	fx := newBatchFixture(t, 4)
	batch := fx.seedBatch(payrollbatch.StatusPending)

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.Equal(t, 4, fx.batches.successful)
	assert.Equal(t, 0, fx.batches.failed)
	assert.Equal(t, payrollbatch.StatusCompleted, fx.batches.final)

	// Completion is announced through the outbox.
	assert.Len(t, fx.outbox.events, 1)
	assert.Equal(t, "payroll.batch.completed", fx.outbox.events[0].EventType)
}

func TestProcessEmploymentLoadFailureRecordsEmploymentLevelError(t *testing.T) {
	fx := newBatchFixture(t, 3)
	batch := fx.seedBatch(payrollbatch.StatusPending)

	// Drop one employment view so BuildLines fails for it.
	delete(fx.employments.views, fx.employments.resolveIDs[0])

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.Equal(t, 2, fx.batches.successful)
	assert.Equal(t, 1, fx.batches.failed)
	assert.Len(t, fx.batches.errs, 1)
	assert.Nil(t, fx.batches.errs[0].AllocationID)
}

func TestProcessSkipsTerminalBatch(t *testing.T) {
	fx := newBatchFixture(t, 3)
	batch := fx.seedBatch(payrollbatch.StatusCompleted)

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.False(t, fx.batches.resetRan)
	assert.Equal(t, 0, fx.batches.processed)
	assert.Empty(t, fx.payrolls.upserted)
}

func TestProcessMissingRulesFailsBatch(t *testing.T) {
	fx := newBatchFixture(t, 3)
	batch := fx.seedBatch(payrollbatch.StatusPending)
	fx.rules.err = payruleerrors.MissingTaxBrackets(2026)

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.Equal(t, payrollbatch.StatusFailed, fx.batches.final)
	assert.NotNil(t, fx.batches.reason)
	assert.Equal(t, 0, fx.batches.processed)
}

func TestProcessStopsOnCancellation(t *testing.T) {
	fx := newBatchFixture(t, 5)
	batch := fx.seedBatch(payrollbatch.StatusPending)
	fx.cancel.set = true

	err := fx.service.Process(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0, fx.batches.processed)
	assert.Equal(t, payrollbatch.StatusCompletedWithErrors, fx.batches.final)
	assert.NotNil(t, fx.batches.reason)
	assert.Equal(t, "cancelled by user", *fx.batches.reason)
	assert.True(t, fx.cancel.cleared)
}

func TestProcessUnknownBatch(t *testing.T) {
	fx := newBatchFixture(t, 1)

	err := fx.service.Process(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, payrollbatcherrors.ErrBatchNotFound)
}

func TestCancelRejectsTerminalBatch(t *testing.T) {
	fx := newBatchFixture(t, 1)
	batch := fx.seedBatch(payrollbatch.StatusCompleted)

	err := fx.service.Cancel(context.Background(), batch.ID)

	assert.ErrorIs(t, err, payrollbatcherrors.ErrBatchAlreadyTerminal)
	assert.False(t, fx.cancel.set)
}

func TestCancelSetsFlagForRunningBatch(t *testing.T) {
	fx := newBatchFixture(t, 1)
	batch := fx.seedBatch(payrollbatch.StatusProcessing)

	err := fx.service.Cancel(context.Background(), batch.ID)

	assert.NoError(t, err)
	assert.True(t, fx.cancel.set)
}

func TestErrorsCSVIncludesHeaderAndRows(t *testing.T) {
	fx := newBatchFixture(t, 2)
	batch := fx.seedBatch(payrollbatch.StatusCompletedWithErrors)

	allocationID := uuid.NewString()
	fx.batches.errs = []payrollbatch.BatchError{{
		ID:           uuid.NewString(),
		BatchID:      batch.ID,
		EmploymentID: uuid.NewString(),
		StaffID:      "EMP-0001",
		EmployeeName: "Somchai J",
		AllocationID: &allocationID,
		Message:      "insert payroll: connection reset",
	}}

	data, err := fx.service.ErrorsCSV(context.Background(), batch.ID)

	assert.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "employment_id,staff_id,employee_name,allocation_id,error")
	assert.Contains(t, out, "EMP-0001")
	assert.Contains(t, out, "connection reset")
}
