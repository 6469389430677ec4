package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator adapters return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: no snapshot / account exists for the key
//   - ErrConflict: a write lost against a newer record
//   - ErrUnavailable: backing service or collaborator is temporarily unreachable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
