package sio

// Driver is the capability contract an SIO unit expects from whatever
// implementation is currently selected for its transfer mode: init on
// attach, deinit on detach, load/unload on mode switch, a register
// write intercept, and a per-tick event pump. Node satisfies this
// contract for the lockstep implementation; an embedder could swap in
// a null driver for an unconnected SIO unit without this package
// knowing the difference.
type Driver interface {
	Init() bool
	Deinit()
	Load() bool
	Unload() bool
	WriteRegister(address uint16, value uint16) uint16
	ProcessEvents(cycles int32) int32
}

// LockstepDriver adapts a Node to the Driver contract for a given
// Mode, dispatching register writes to the MULTI or NORMAL-32 masking
// rules as appropriate.
type LockstepDriver struct {
	Node *Node
	Mode Mode
}

// NewLockstepDriver returns a Driver backed by node, configured for
// mode.
func NewLockstepDriver(node *Node, mode Mode) *LockstepDriver {
	return &LockstepDriver{Node: node, Mode: mode}
}

func (d *LockstepDriver) Init() bool {
	return true
}

func (d *LockstepDriver) Deinit() {}

func (d *LockstepDriver) Load() bool {
	d.Node.Load(d.Mode)
	return true
}

func (d *LockstepDriver) Unload() bool {
	d.Node.Unload()
	return true
}

func (d *LockstepDriver) WriteRegister(address uint16, value uint16) uint16 {
	switch d.Mode {
	case ModeMulti:
		return d.Node.WriteMultiRegister(address, value)
	case ModeNormal32:
		return d.Node.WriteNormalRegister(address, value)
	default:
		return value
	}
}

func (d *LockstepDriver) ProcessEvents(cycles int32) int32 {
	return d.Node.ProcessEvents(cycles)
}
