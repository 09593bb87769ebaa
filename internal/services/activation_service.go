// Package services – ActivationService
//
// This file implements ActivationService, the state machine that binds a
// messaging chat to a warehouse. A chat moves through
// unbound → pending-code → active → inactive, where the deep-link path skips
// pending-code entirely. The CRM is the authority on which warehouses exist
// and which activation codes are genuine; the local Binding Store is the
// authority on which chat is bound to which warehouse. Deactivation is a
// purely local transition and must keep working with the CRM unreachable.
//
// Both activation paths converge on one private commit routine, so manual
// and deep-link activations are indistinguishable once committed.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include chat/warehouse identifiers.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-warehouse-backend/internal/crm"
	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/session"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Conflict policies applied when a chat that is actively bound to one
// warehouse tries to activate a different one.
const (
	// ConflictPolicyReplace atomically re-points the binding (default).
	ConflictPolicyReplace = "replace"
	// ConflictPolicyReject refuses until the chat deactivates first.
	ConflictPolicyReject = "reject"
)

// BindingRepo defines the repository contract required by ActivationService.
// Implementations are responsible for persistence of warehouse bindings.
type BindingRepo interface {
	// GetBinding fetches the binding row for a chat, active or not.
	GetBinding(ctx context.Context, db *gorm.DB, chatID string) (*domain.WarehouseBinding, error)

	// UpsertActive records an activation in a single atomic statement,
	// preserving activated_at when the chat is already active for the same
	// warehouse.
	UpsertActive(ctx context.Context, db *gorm.DB, chatID, warehouseID string, now time.Time) (*domain.WarehouseBinding, error)

	// MarkInactive flips an active binding to inactive, guarding on the
	// current status in the WHERE clause.
	MarkInactive(ctx context.Context, db *gorm.DB, chatID string, now time.Time) (*domain.WarehouseBinding, error)
}

// ActivationService owns the chat↔warehouse binding lifecycle. It coordinates
// the CRM validation gateway, the transient pending-activation store, and the
// durable Binding Store.
type ActivationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the binding repository used by this service.
	Repo BindingRepo
	// CRM answers existence and code questions with definitive verdicts.
	CRM crm.Validator
	// Sessions holds the transient awaiting-code state of the manual path.
	Sessions session.Store

	// PendingTTL bounds how long a manual flow may wait for its code.
	PendingTTL time.Duration
	// ConflictPolicy is ConflictPolicyReplace or ConflictPolicyReject.
	ConflictPolicy string
}

// NewActivationService constructs an ActivationService with sane defaults.
func NewActivationService(db *gorm.DB, r BindingRepo, v crm.Validator, st session.Store) *ActivationService {
	return &ActivationService{
		DB:             db,
		Repo:           r,
		CRM:            v,
		Sessions:       st,
		PendingTTL:     15 * time.Minute,
		ConflictPolicy: ConflictPolicyReplace,
	}
}

// BeginManualActivation opens the manual activation flow: it verifies the
// claimed warehouse exists in the CRM and parks an awaiting-code record for
// the chat. Re-running it simply re-arms the flow with the newest claim, so
// the operation is safely repeatable. No binding is written here.
func (s *ActivationService) BeginManualActivation(ctx context.Context, chatID, warehouseID string) error {
	tr := otel.Tracer("services/ActivationService")
	ctx, span := tr.Start(ctx, "BeginManualActivation",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("warehouse.id", warehouseID),
		),
	)
	defer span.End()

	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return ErrWarehouseNotFound
	}

	ok, err := s.CRM.ValidateWarehouseExists(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !ok {
		return ErrWarehouseNotFound
	}

	rec := session.PendingActivation{WarehouseID: warehouseID, StartedAt: time.Now().UTC()}
	if err := s.Sessions.Put(ctx, chatID, rec, s.PendingTTL); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// SubmitActivationCode resolves the manual flow: the code must validate
// against the warehouse claimed at BeginManualActivation. On success the
// binding is committed and the pending record cleared; on any failure the
// pending record and binding state are left untouched.
func (s *ActivationService) SubmitActivationCode(ctx context.Context, chatID, code string) (*domain.WarehouseBinding, error) {
	tr := otel.Tracer("services/ActivationService")
	ctx, span := tr.Start(ctx, "SubmitActivationCode",
		trace.WithAttributes(attribute.String("chat.id", chatID)),
	)
	defer span.End()

	pending, err := s.Sessions.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNoPendingActivation
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	ok, err := s.CRM.ValidateActivationCode(ctx, pending.WarehouseID, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	b, err := s.commit(ctx, chatID, pending.WarehouseID)
	if err != nil {
		return nil, err
	}

	// Cleared only after the durable commit; a leftover record is reaped by
	// its TTL and a replayed submit re-commits idempotently.
	_ = s.Sessions.Delete(ctx, chatID)
	return b, nil
}

// ActivateViaDeepLink performs single-step activation: warehouse claim and
// proof token arrive together, so no pending state is ever created. The
// token is validated exactly like a manually submitted code, and the commit
// path is shared, so both modes leave identical state behind.
func (s *ActivationService) ActivateViaDeepLink(ctx context.Context, chatID, warehouseID, token string) (*domain.WarehouseBinding, error) {
	tr := otel.Tracer("services/ActivationService")
	ctx, span := tr.Start(ctx, "ActivateViaDeepLink",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("warehouse.id", warehouseID),
		),
	)
	defer span.End()

	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return nil, ErrWarehouseNotFound
	}

	ok, err := s.CRM.ValidateWarehouseExists(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !ok {
		return nil, ErrWarehouseNotFound
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidCode
	}

	ok, err = s.CRM.ValidateActivationCode(ctx, warehouseID, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	b, err := s.commit(ctx, chatID, warehouseID)
	if err != nil {
		return nil, err
	}

	// A deep link supersedes any half-finished manual flow for the chat.
	_ = s.Sessions.Delete(ctx, chatID)
	return b, nil
}

// Deactivate flips the chat's binding to inactive. This is a purely local
// transition: the CRM is never consulted, so it keeps working during CRM
// outages. The row itself survives for audit; only its status changes.
func (s *ActivationService) Deactivate(ctx context.Context, chatID string) (*domain.WarehouseBinding, error) {
	tr := otel.Tracer("services/ActivationService")
	ctx, span := tr.Start(ctx, "Deactivate",
		trace.WithAttributes(attribute.String("chat.id", chatID)),
	)
	defer span.End()

	b, err := s.Repo.MarkInactive(ctx, s.DB, chatID, time.Now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotActivated
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Close a dangling manual flow too; harmless when none exists.
	_ = s.Sessions.Delete(ctx, chatID)
	return b, nil
}

// BindingStatus reports the chat's current binding, active or inactive,
// without consulting the CRM. ErrNotActivated means the chat was never
// bound.
func (s *ActivationService) BindingStatus(ctx context.Context, chatID string) (*domain.WarehouseBinding, error) {
	tr := otel.Tracer("services/ActivationService")
	ctx, span := tr.Start(ctx, "BindingStatus",
		trace.WithAttributes(attribute.String("chat.id", chatID)),
	)
	defer span.End()

	b, err := s.Repo.GetBinding(ctx, s.DB, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotActivated
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return b, nil
}

// commit enforces the conflict policy and durably records the activation.
// Under the replace policy the upsert alone carries the whole transition; the
// reject policy adds a status read first. Check-then-set is acceptable here:
// operations for one chat do not race each other, and the single-row upsert
// caps a lost race at a replaced binding for that same chat.
func (s *ActivationService) commit(ctx context.Context, chatID, warehouseID string) (*domain.WarehouseBinding, error) {
	if s.ConflictPolicy == ConflictPolicyReject {
		cur, err := s.Repo.GetBinding(ctx, s.DB, chatID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First activation for this chat.
		case err != nil:
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		case cur.Status == domain.BindingStatusActive && cur.WarehouseID != warehouseID:
			return nil, ErrConflictingBinding
		}
	}

	b, err := s.Repo.UpsertActive(ctx, s.DB, chatID, warehouseID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return b, nil
}
