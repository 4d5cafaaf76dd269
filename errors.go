package nocroute

// errors.go declares the failure classes reported while compiling a topology
// and while selecting ports for packets.

import "errors"

var (
	// configuration errors, reported by topology compilation
	ErrVNetConflict = errors.New("two links connecting same src and destination cannot support same vnets")
	ErrVNetRange    = errors.New("not enough virtual networks")
	ErrPseudoLink   = errors.New("link directly joins two endpoint pseudo-nodes")
	ErrNodeRange    = errors.New("node identifier out of range")
	ErrDisconnected = errors.New("missing connectivity")

	// routing-table gaps, reported at lookup time
	ErrNoRoute = errors.New("no route exists from this router")

	// unknown or unimplemented selectors
	ErrUnknownAlgorithm = errors.New("unknown routing algorithm")
	ErrNotImplemented   = errors.New("routing algorithm not implemented")
	ErrUnknownDirection = errors.New("unknown port direction")
)
