package sio

import "sync/atomic"

// atomicPhase stores a Phase with release/acquire semantics. Only the
// master node ever writes it, so a plain atomic store/load is
// sufficient; no compare-and-swap is needed.
type atomicPhase struct {
	v atomic.Int32
}

func (a *atomicPhase) load() Phase {
	return Phase(a.v.Load())
}

func (a *atomicPhase) store(p Phase) {
	a.v.Store(int32(p))
}
