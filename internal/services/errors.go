// Package services defines the business logic for warehouse activation,
// binding lifecycle, and incoming order dispatch. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer. Infrastructure failures
// (ErrGatewayUnavailable, ErrStorageUnavailable) are wrapped with the
// underlying cause so logs keep the detail while callers match the sentinel
// via errors.Is.
package services

import "errors"

// Activation-related errors.
var (
	// ErrWarehouseNotFound indicates the CRM definitively reported that no
	// warehouse exists with the claimed identifier. This is a verdict, not an
	// outage.
	ErrWarehouseNotFound = errors.New("warehouse not found")

	// ErrInvalidCode is returned when a submitted activation code (or
	// deep-link token) is definitively wrong for the claimed warehouse,
	// including codes that resolve to a different warehouse.
	ErrInvalidCode = errors.New("invalid activation code")

	// ErrNoPendingActivation is returned when a code arrives for a chat with
	// no open activation flow. Expired flows are indistinguishable from ones
	// that never started.
	ErrNoPendingActivation = errors.New("no pending activation for this chat")

	// ErrNotActivated indicates a deactivation or status requirement failed
	// because the chat has no active warehouse binding.
	ErrNotActivated = errors.New("chat has no active warehouse binding")

	// ErrConflictingBinding is returned under the reject conflict policy when
	// a chat that is actively bound to one warehouse tries to activate a
	// different one without deactivating first.
	ErrConflictingBinding = errors.New("chat is already bound to a different warehouse")

	// ErrGatewayUnavailable indicates the CRM could not deliver a definitive
	// verdict (timeout, transport failure, or server error). Callers must not
	// treat it as a rejection.
	ErrGatewayUnavailable = errors.New("crm gateway unavailable")

	// ErrStorageUnavailable indicates a local state store (bindings or
	// pending sessions) failed. The operation is aborted with no partial
	// writes.
	ErrStorageUnavailable = errors.New("binding storage unavailable")
)

// Order dispatch errors.
var (
	// ErrNoActiveBinding is returned when an incoming order targets a
	// warehouse that no chat is actively bound to, so there is nobody to
	// notify.
	ErrNoActiveBinding = errors.New("no active binding for warehouse")

	// ErrInvalidOrder is returned when an incoming order payload fails
	// validation before dispatch.
	ErrInvalidOrder = errors.New("invalid order payload")
)
