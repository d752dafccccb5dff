package edgevec

import "errors"

// Engine and collection lifecycle errors. Index-operation failures
// (dimension mismatch, invalid k, id not found, and so on) are reported as
// *edvcerr.Error by the internal index packages and surface unwrapped —
// callers that want to switch on error kind should use errors.As against
// *edvcerr.Error rather than these sentinels, which only cover the
// lifecycle states this package itself owns.
var (
	ErrEngineClosed             = errors.New("edgevec: engine is closed")
	ErrCollectionClosed         = errors.New("edgevec: collection is closed")
	ErrCollectionExists         = errors.New("edgevec: collection already exists")
	ErrCollectionNotFound       = errors.New("edgevec: collection not found")
	ErrSparseCollectionExists   = errors.New("edgevec: sparse collection already exists")
	ErrSparseCollectionNotFound = errors.New("edgevec: sparse collection not found")
	ErrTooManyCollections       = errors.New("edgevec: maximum number of collections exceeded")
)
