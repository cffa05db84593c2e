package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const tracerName = "github.com/mmdatafocus/ventures_backend/workflow"

// Engine runs the cascades triggered by contracts, ledger transactions and
// new staff. Now is the clock used for every default date.
type Engine struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Now    func() time.Time
	Tracer trace.Tracer
}

func NewEngine(db *gorm.DB, logger *logrus.Logger) *Engine {
	return &Engine{
		DB:     db,
		Logger: logger,
		Now:    time.Now,
		Tracer: otel.Tracer(tracerName),
	}
}

func (e *Engine) today() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return utils.ToDate(now())
}

func (e *Engine) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}
	return otel.Tracer(tracerName)
}

// cascadeBody writes the cascade's records on tx and reports the id of the
// primary record it ran for.
type cascadeBody func(ctx context.Context, tx *gorm.DB, today time.Time) (triggerId int, effects []Effect, err error)

// run executes body for companyId under the venture lock in one transaction,
// together with the outbox record announcing it.
func (e *Engine) run(ctx context.Context, companyId string, cascade string, body cascadeBody) (effects []Effect, err error) {
	started := time.Now()
	defer func() { observeCascade(cascade, err == nil, time.Since(started)) }()

	ctx = utils.SetCompanyIdInContext(ctx, companyId)
	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.NewString()
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
	}

	ctx, span := e.tracer().Start(ctx, "cascade."+cascade, trace.WithAttributes(
		attribute.String("company_id", companyId),
		attribute.String("correlation_id", correlationId),
	))
	defer span.End()

	release, err := LockVenture(ctx, companyId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer release()

	today := e.today()
	err = WithTransaction(ctx, e.DB, func(tx *gorm.DB) error {
		triggerId, result, err := body(ctx, tx, today)
		if err != nil {
			return err
		}
		effects = result
		return writeOutboxRecord(tx, companyId, cascade, triggerId, effects, correlationId)
	})
	if err != nil {
		config.LogError(e.Logger, "engine.go", "run", "cascade "+cascade, companyId, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("effects", len(effects)))
	if e.Logger != nil {
		e.Logger.WithFields(logrus.Fields{
			"company_id":     companyId,
			"cascade":        cascade,
			"effects":        len(effects),
			"correlation_id": correlationId,
		}).Info("cascade committed")
	}
	return effects, nil
}

func writeOutboxRecord(tx *gorm.DB, companyId string, cascade string, triggerId int, effects []Effect, correlationId string) error {
	payload, err := json.Marshal(effects)
	if err != nil {
		return err
	}
	record := models.VentureEventRecord{
		CompanyId:     companyId,
		Cascade:       cascade,
		TriggerId:     triggerId,
		Effects:       payload,
		CorrelationId: correlationId,
		PublishStatus: models.OutboxPublishStatusPending,
	}
	return tx.Create(&record).Error
}

// OnContractRecorded runs the cascade for a contract that is already stored.
// An illegal direction is rejected before anything is locked or written.
func (e *Engine) OnContractRecorded(ctx context.Context, contract *models.Contract) ([]Effect, error) {
	if _, err := models.ParseContractDirection(string(contract.Direction)); err != nil {
		return nil, err
	}
	return e.run(ctx, contract.CompanyId, models.CascadeContract, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		effects, err := applyContract(tx, contract, today)
		return contract.ID, effects, err
	})
}

func (e *Engine) OnTransactionRecorded(ctx context.Context, record *models.LedgerTransaction) ([]Effect, error) {
	if _, err := models.ParseTransactionDirection(string(record.Direction)); err != nil {
		return nil, err
	}
	return e.run(ctx, record.CompanyId, models.CascadeTransaction, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		effects, err := applyTransaction(tx, record, today)
		return record.ID, effects, err
	})
}

func (e *Engine) OnStaffAdded(ctx context.Context, staff *models.StaffMember) ([]Effect, error) {
	return e.run(ctx, staff.CompanyId, models.CascadeStaff, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		effects, err := applyStaff(tx, staff, today)
		return staff.ID, effects, err
	})
}

// RecordContract stores the contract and runs its cascade in the same transaction.
func (e *Engine) RecordContract(ctx context.Context, companyId string, input *models.NewContract) (*models.Contract, []Effect, error) {
	if _, err := models.ParseContractDirection(string(input.Direction)); err != nil {
		return nil, nil, err
	}
	var contract *models.Contract
	effects, err := e.run(ctx, companyId, models.CascadeContract, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		c, err := models.CreateContract(ctx, tx, companyId, input)
		if err != nil {
			return 0, nil, err
		}
		effects, err := applyContract(tx, c, today)
		if err != nil {
			return 0, nil, err
		}
		contract = c
		return c.ID, effects, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return contract, effects, nil
}

func (e *Engine) RecordTransaction(ctx context.Context, companyId string, input *models.NewLedgerTransaction) (*models.LedgerTransaction, []Effect, error) {
	if _, err := models.ParseTransactionDirection(string(input.Direction)); err != nil {
		return nil, nil, err
	}
	var record *models.LedgerTransaction
	effects, err := e.run(ctx, companyId, models.CascadeTransaction, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		t, err := models.CreateLedgerTransaction(ctx, tx, companyId, input, today)
		if err != nil {
			return 0, nil, err
		}
		effects, err := applyTransaction(tx, t, today)
		if err != nil {
			return 0, nil, err
		}
		record = t
		return t.ID, effects, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return record, effects, nil
}

func (e *Engine) RecordStaff(ctx context.Context, companyId string, input *models.NewStaffMember) (*models.StaffMember, []Effect, error) {
	var staff *models.StaffMember
	effects, err := e.run(ctx, companyId, models.CascadeStaff, func(ctx context.Context, tx *gorm.DB, today time.Time) (int, []Effect, error) {
		s, err := models.CreateStaffMember(ctx, tx, companyId, input, today)
		if err != nil {
			return 0, nil, err
		}
		effects, err := applyStaff(tx, s, today)
		if err != nil {
			return 0, nil, err
		}
		staff = s
		return s.ID, effects, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return staff, effects, nil
}
