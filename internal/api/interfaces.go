package api

import "github.com/fvnks/konecte.cl-sub001/internal/domain"

// Handler dependencies are the canonical domain interfaces; aliased here so
// handler constructors read naturally and tests can swap in mocks.
type (
	// RequestService creates visits.
	RequestService = domain.VisitRequestService
	// ActionService advances visit lifecycles.
	ActionService = domain.VisitActionService
	// QueryService serves reads.
	QueryService = domain.VisitQueryService
)
