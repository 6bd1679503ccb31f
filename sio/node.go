package sio

// Node is one GBA's driver into a shared TransferState. Node 0 is the
// master; every other attached node is a slave.
type Node struct {
	ID   int
	Mode Mode

	NextEvent        int32
	EventDiff        int32
	TransferFinished bool

	state *TransferState
	regs  Registers

	// sioCNT shadows the last masked SIOCNT value this node wrote,
	// used to preserve the 0x00FC field across writes the way the
	// real register file would.
	sioCNT uint16
}

// NewNode returns a lockstep node backed by the given register
// surface. It must be attached to a TransferState with Attach before
// use.
func NewNode(regs Registers) *Node {
	return &Node{regs: regs}
}

// Load configures the node for the transfer mode currently selected
// by the embedder (mirroring the real driver's load() hook, called
// when the SIO unit switches into this node's mode). It must be
// called once after Attach and before any register write or
// ProcessEvents call.
func (n *Node) Load(mode Mode) {
	n.NextEvent = 0
	n.EventDiff = 0
	n.Mode = mode
	if mode == ModeMulti {
		n.state.AttachedMulti++
	}
}

// Unload reverses Load, called when the embedder switches this node
// out of its current mode.
func (n *Node) Unload() {
	if n.Mode == ModeMulti {
		n.state.AttachedMulti--
	}
	n.state.Host.Unload(n.ID)
}

// WriteMultiRegister implements the MULTI-mode SIOCNT/SIOMLT_SEND
// write contract (spec §4.1/§6): SIOCNT is masked to 0xFF83 and
// OR'd with the previous 0x00FC field; a start-bit write is honored
// only for the master, only while idle, and only once every attached
// node is participating, and triggers the STARTING phase.
func (n *Node) WriteMultiRegister(address uint16, value uint16) uint16 {
	switch address {
	case RegSIOCNT:
		if value&0x0080 != 0 && n.state.Phase() == PhaseIdle {
			if n.ID == 0 && n.state.Ready() {
				n.state.storePhase(PhaseStarting)
				baud := uint8(value & 0x3)
				n.state.TransferCycles = n.state.Host.MultiTransferCycles(baud, n.state.Attached)
				n.NextEvent = 0
			} else {
				value &^= 0x0080
			}
		}
		value &= 0xFF83
		value |= n.sioCNT & 0x00FC
		n.sioCNT = value
	case RegSIOMLTSend:
		// observed only; no masking or state change.
	}
	return value
}

// WriteNormalRegister implements the NORMAL-32 SIOCNT/SIODATA32
// write contract (spec §6): SIOCNT is masked to 0xFF8B, the master
// forces its SI line high, and a master start-bit write with the
// internal shift clock selected triggers STARTING with a cycle
// budget taken from the frequency-divider bit.
func (n *Node) WriteNormalRegister(address uint16, value uint16) uint16 {
	switch address {
	case RegSIOCNT:
		value &= 0xFF8B
		if n.ID == 0 {
			const siBit = 0x0008
			value |= siBit
		}
		if value&0x0080 != 0 && n.ID == 0 {
			if value&0x0001 != 0 {
				n.state.storePhase(PhaseStarting)
			}
			if value&0x0002 != 0 {
				n.state.TransferCycles = ARM7TDMIFrequency / 1024
			} else {
				n.state.TransferCycles = ARM7TDMIFrequency / 8192
			}
		}
	case RegSIOData32Lo, RegSIOData32Hi:
		// observed only.
	}
	return value
}

// ProcessEvents advances the node by cycles and returns the number of
// cycles until it next needs attention, or INT32Max when fewer than
// two nodes are attached (the protocol is inert until then).
func (n *Node) ProcessEvents(cycles int32) int32 {
	if n.state.Attached < 2 {
		return INT32Max
	}
	n.EventDiff += cycles
	n.NextEvent -= cycles
	if n.NextEvent <= 0 {
		if n.ID == 0 {
			cycles = n.masterUpdate()
		} else {
			cycles = n.slaveUpdate()
			n.NextEvent += n.state.Host.UseCycles(n.ID, n.EventDiff)
		}
		n.EventDiff = 0
	} else {
		cycles = n.NextEvent
	}
	if cycles < 0 {
		return 0
	}
	return cycles
}

// INT32Max mirrors the original INT_MAX sentinel ProcessEvents
// returns while fewer than two nodes are attached.
const INT32Max = int32(1<<31 - 1)

func (n *Node) sameModeMask() uint32 {
	var mask uint32
	for i := 1; i < n.state.Attached; i++ {
		if n.state.Players[i].Mode == n.Mode {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func (n *Node) masterUpdate() int32 {
	needsToWait := false
	switch n.state.Phase() {
	case PhaseIdle:
		n.NextEvent += LockstepIncrement
	case PhaseStarting:
		n.TransferFinished = false
		n.state.MultiRecv = [4]uint16{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF}
		needsToWait = true
		n.state.storePhase(PhaseStarted)
		n.NextEvent += 512
	case PhaseStarted:
		n.state.MultiRecv[0] = n.regs.ReadSIOMLTSend()
		n.NextEvent += 512
		n.state.storePhase(PhaseFinishing)
	case PhaseFinishing:
		n.NextEvent += n.state.TransferCycles - 1024
		needsToWait = true
		n.state.storePhase(PhaseFinished)
	case PhaseFinished:
		n.finishTransfer()
		n.NextEvent += LockstepIncrement
		n.state.storePhase(PhaseIdle)
	}

	mask := n.sameModeMask()
	if mask != 0 {
		if needsToWait {
			if !n.state.Host.Wait(mask) {
				panic("sio: lockstep wait failed, scheduling is broken")
			}
		} else {
			n.state.Host.Signal(mask)
		}
	}
	n.state.Host.AddCycles(0, n.EventDiff)
	if needsToWait {
		return 0
	}
	return n.NextEvent
}

func (n *Node) slaveUpdate() int32 {
	signal := false
	switch n.state.Phase() {
	case PhaseIdle:
		if !n.state.Ready() {
			n.state.Host.AddCycles(n.ID, LockstepIncrement)
		}
	case PhaseStarting, PhaseFinishing:
		// nothing to do; waiting on the master.
	case PhaseStarted:
		n.TransferFinished = false
		switch n.Mode {
		case ModeMulti:
			n.state.MultiRecv[n.ID] = n.regs.ReadSIOMLTSend()
			n.regs.WriteMultiRegisters([4]uint16{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF})
			n.regs.SetBusy(true)
		case ModeNormal8:
			n.state.MultiRecv[n.ID] = 0xFFFF
			n.state.NormalRecv[n.ID] = uint32(n.regs.ReadSIOData8())
		case ModeNormal32:
			n.state.MultiRecv[n.ID] = 0xFFFF
			lo, hi := n.regs.ReadSIOData32()
			n.state.NormalRecv[n.ID] = uint32From(lo, hi)
		default:
			n.state.MultiRecv[n.ID] = 0xFFFF
		}
		signal = true
	case PhaseFinished:
		n.finishTransfer()
		signal = true
	}
	if signal {
		n.state.Host.Signal(1 << uint(n.ID))
	}
	return 0
}

// finishTransfer mirrors the observable register writes a real SIO
// driver makes when a transfer completes. It is idempotent: once
// TransferFinished latches true, later calls in the same phase are
// no-ops, since both the master and any slave reaching PhaseFinished
// call it.
func (n *Node) finishTransfer() {
	if n.TransferFinished {
		return
	}
	switch n.Mode {
	case ModeMulti:
		n.regs.WriteMultiRegisters(n.state.MultiRecv)
		n.regs.SetRCNTReady(true)
		n.regs.SetBusy(false)
		n.regs.SetMultiplayerID(n.ID)
		if n.regs.IRQEnabled() {
			n.regs.RaiseSIOIRQ()
		}
	case ModeNormal8:
		if n.ID > 0 {
			n.regs.SetSI(n.state.Players[n.ID-1].regs.IdleSO())
			n.regs.WriteSIOData8(uint16(n.state.NormalRecv[n.ID-1] & 0xFF))
		} else {
			n.regs.WriteSIOData8(0xFFFF)
		}
		if n.regs.IRQEnabled() {
			n.regs.RaiseSIOIRQ()
		}
	case ModeNormal32:
		if n.ID > 0 {
			n.regs.SetSI(n.state.Players[n.ID-1].regs.IdleSO())
			v := n.state.NormalRecv[n.ID-1]
			n.regs.WriteSIOData32(uint16(v), uint16(v>>16))
		} else {
			n.regs.WriteSIOData32(0xFFFF, 0xFFFF)
		}
		if n.regs.IRQEnabled() {
			n.regs.RaiseSIOIRQ()
		}
	}
	n.TransferFinished = true
}

func uint32From(lo, hi uint16) uint32 {
	return uint32(lo) | uint32(hi)<<16
}
