package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"payment-ledger-sync/internal/client"
	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/model"
	"payment-ledger-sync/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("admin role required")
	ErrInvalidInput   = errors.New("invalid sync request")
	ErrProcessor      = errors.New("payment processor error")
	ErrSyncInProgress = repository.ErrSyncInProgress
)

type SyncOptions struct {
	// LastSyncTime overrides the configured default checkpoint.
	LastSyncTime *time.Time
	Mode         model.SyncMode
}

type SyncResult struct {
	RunID      string
	Count      int
	Successful int
	Failed     int
	Skipped    int
	Message    string
}

type PaymentSyncService interface {
	// Sync reconciles processor payments created after the checkpoint into the
	// local ledger. actor must be an admin.
	Sync(ctx context.Context, actor *model.User, opts SyncOptions) (*SyncResult, error)
	LastStatus(ctx context.Context) (*model.SyncStatus, error)
}

type paymentSyncServiceImpl struct {
	processor   client.PaymentProcessor
	paymentRepo repository.PaymentRepository
	planRepo    repository.SubscriptionPlanRepository
	userRepo    repository.UserRepository
	syncState   repository.SyncStateStore
	cfg         config.Sync
	bypass      map[string]struct{}
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentSyncService(
	processor client.PaymentProcessor,
	paymentRepo repository.PaymentRepository,
	planRepo repository.SubscriptionPlanRepository,
	userRepo repository.UserRepository,
	syncState repository.SyncStateStore,
	cfg config.Sync,
	log *zap.Logger,
) PaymentSyncService {
	bypass := make(map[string]struct{}, len(cfg.BypassEmails))
	for _, email := range cfg.BypassEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			bypass[email] = struct{}{}
		}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	return &paymentSyncServiceImpl{
		processor:   processor,
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		userRepo:    userRepo,
		syncState:   syncState,
		cfg:         cfg,
		bypass:      bypass,
		log:         log.Named("payment_sync"),
		now:         time.Now,
	}
}

// syncRun is the per-invocation state shared by the record workers.
type syncRun struct {
	id           string
	mode         model.SyncMode
	checkpoint   time.Time
	actor        *model.User
	fallbackPlan *model.SubscriptionPlan
	existing     map[string]struct{}
}

type recordOutcome int

const (
	recordSynced recordOutcome = iota
	recordSkipped
)

func (s *paymentSyncServiceImpl) Sync(ctx context.Context, actor *model.User, opts SyncOptions) (result *SyncResult, err error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	mode := opts.Mode
	if mode == "" {
		mode = model.SyncModeIncremental
	}
	if mode != model.SyncModeIncremental && mode != model.SyncModeFull {
		return nil, fmt.Errorf("%w: unknown sync type %q", ErrInvalidInput, mode)
	}

	checkpoint := s.cfg.DefaultCheckpoint
	if opts.LastSyncTime != nil {
		checkpoint = *opts.LastSyncTime
	}

	release, err := s.syncState.AcquireLock(ctx, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	run := &syncRun{
		id:         uuid.NewString(),
		mode:       mode,
		checkpoint: checkpoint.UTC(),
		actor:      actor,
	}
	status := model.SyncStatus{
		RunID:       run.id,
		Mode:        mode,
		Checkpoint:  run.checkpoint,
		TriggeredBy: actor.ID,
		StartedAt:   s.now().UTC(),
	}
	log := s.log.With(zap.String("run_id", run.id), zap.String("mode", string(mode)), zap.String("processor", s.processor.Name()))

	defer func() {
		status.FinishedAt = s.now().UTC()
		if result != nil {
			status.Count = result.Count
			status.Successful = result.Successful
			status.Failed = result.Failed
			status.Skipped = result.Skipped
		}
		if err != nil {
			status.Error = err.Error()
		}
		if saveErr := s.syncState.SaveStatus(context.WithoutCancel(ctx), status); saveErr != nil {
			log.Warn("save sync status", zap.Error(saveErr))
		}
	}()

	payments, err := s.processor.ListPayments(ctx, run.checkpoint, s.cfg.PageSize)
	if err != nil {
		log.Error("list processor payments", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProcessor, err)
	}

	if len(payments) == 0 {
		log.Info("no payments to sync", zap.Time("checkpoint", run.checkpoint))
		return &SyncResult{RunID: run.id, Message: "No new payments to sync"}, nil
	}

	run.fallbackPlan, err = s.planRepo.EnsureDefault(ctx, s.defaultPlan())
	if err != nil {
		return nil, fmt.Errorf("ensure default subscription plan: %w", err)
	}

	ids := make([]string, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}
	run.existing, err = s.paymentRepo.ExistingProviderPaymentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var successful, failed, skipped atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for _, payment := range payments {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failed.Add(1)
					log.Error("payment sync panicked", zap.String("provider_payment_id", payment.ID), zap.Any("panic", r))
				}
			}()

			outcome, err := s.syncPayment(ctx, run, payment)
			switch {
			case err != nil:
				failed.Add(1)
				log.Error("sync payment", zap.String("provider_payment_id", payment.ID), zap.Error(err))
			case outcome == recordSkipped:
				skipped.Add(1)
			default:
				successful.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result = &SyncResult{
		RunID:      run.id,
		Count:      len(payments),
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}
	result.Message = fmt.Sprintf("Synced %d of %d payments", result.Successful, result.Count)

	log.Info("payment sync finished",
		zap.Int("count", result.Count),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *paymentSyncServiceImpl) syncPayment(ctx context.Context, run *syncRun, p model.ExternalPayment) (recordOutcome, error) {
	if p.MapErr != nil {
		return recordSynced, fmt.Errorf("decode processor record: %w", p.MapErr)
	}
	if _, ok := run.existing[p.ID]; ok && run.mode == model.SyncModeIncremental {
		return recordSkipped, nil
	}

	email := s.customerEmail(ctx, p)
	owner := s.resolveOwner(ctx, run, email)

	if run.mode == model.SyncModeIncremental && p.Created.Before(run.checkpoint) && !s.bypassesCutoff(email) {
		return recordSkipped, nil
	}

	plan := s.resolvePlan(ctx, run, owner)
	method := s.paymentMethod(ctx, p)

	details, err := json.Marshal(map[string]any{
		"processor_status": p.Status,
		"description":      p.Description,
		"metadata":         p.Metadata,
		"sync_mode":        run.mode,
		"payment_method":   method,
	})
	if err != nil {
		return recordSynced, fmt.Errorf("marshal details: %w", err)
	}

	payment := &model.Payment{
		ID:                 uuid.NewString(),
		Amount:             model.MinorToMajor(p.Amount, p.Currency),
		Currency:           p.Currency,
		Provider:           s.processor.Name(),
		PaymentStatus:      MapPaymentStatus(s.processor.Name(), p.Status),
		ProviderPaymentID:  p.ID,
		PaymentMethod:      method,
		Details:            datatypes.JSON(details),
		BillingPeriodStart: p.Created,
		BillingPeriodEnd:   billingPeriodEnd(p.Created, plan.BillingInterval),
		UserID:             owner.ID,
		SubscriptionPlanID: plan.ID,
	}
	if p.CustomerRef != "" {
		ref := p.CustomerRef
		payment.ProviderCustomerID = &ref
	}

	if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
		return recordSynced, fmt.Errorf("upsert payment: %w", err)
	}
	return recordSynced, nil
}

func (s *paymentSyncServiceImpl) customerEmail(ctx context.Context, p model.ExternalPayment) string {
	if p.CustomerEmail != "" || p.CustomerRef == "" {
		return p.CustomerEmail
	}

	customer, err := s.processor.GetCustomer(ctx, p.CustomerRef)
	if err != nil {
		if !errors.Is(err, client.ErrLookupUnsupported) {
			s.log.Debug("customer lookup failed", zap.String("customer", p.CustomerRef), zap.Error(err))
		}
		return ""
	}
	return customer.Email
}

// resolveOwner falls back to the admin running the sync.
func (s *paymentSyncServiceImpl) resolveOwner(ctx context.Context, run *syncRun, email string) *model.User {
	if email == "" {
		return run.actor
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("user lookup failed", zap.String("email", email), zap.Error(err))
		}
		return run.actor
	}
	return user
}

func (s *paymentSyncServiceImpl) resolvePlan(ctx context.Context, run *syncRun, owner *model.User) *model.SubscriptionPlan {
	if owner.SubscriptionPlanID == nil || *owner.SubscriptionPlanID == run.fallbackPlan.ID {
		return run.fallbackPlan
	}

	plan, err := s.planRepo.FindByID(ctx, *owner.SubscriptionPlanID)
	if err != nil {
		return run.fallbackPlan
	}
	return plan
}

func (s *paymentSyncServiceImpl) paymentMethod(ctx context.Context, p model.ExternalPayment) string {
	if p.PaymentMethod != nil {
		return p.PaymentMethod.Descriptor()
	}
	if p.PaymentMethodRef == "" {
		return ""
	}

	method, err := s.processor.GetPaymentMethod(ctx, p.PaymentMethodRef)
	if err != nil {
		return ""
	}
	return method.Descriptor()
}

func (s *paymentSyncServiceImpl) bypassesCutoff(email string) bool {
	if email == "" {
		return false
	}
	_, ok := s.bypass[strings.ToLower(email)]
	return ok
}

func (s *paymentSyncServiceImpl) defaultPlan() *model.SubscriptionPlan {
	name := s.cfg.DefaultPlanName
	if name == "" {
		name = "Default"
	}

	return &model.SubscriptionPlan{
		ID:                  uuid.NewString(),
		Name:                name,
		Price:               decimal.Zero,
		Currency:            "usd",
		BillingInterval:     "month",
		MaxMembers:          5,
		MaxStorageMB:        1024,
		MaxMeetingsPerMonth: 4,
		IsActive:            true,
	}
}

func (s *paymentSyncServiceImpl) LastStatus(ctx context.Context) (*model.SyncStatus, error) {
	return s.syncState.LastStatus(ctx)
}

func billingPeriodEnd(start time.Time, interval string) time.Time {
	if strings.EqualFold(interval, "year") {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
