package sio

// fakeRegisters is an in-memory Registers implementation for tests.
type fakeRegisters struct {
	sendWord   uint16
	data8      uint8
	data32Lo   uint16
	data32Hi   uint16
	multi      [4]uint16
	busy       bool
	multiID    int
	rcntReady  bool
	irqEnabled bool
	irqRaised  int
	idleSO     bool
	si         bool
}

func (r *fakeRegisters) ReadSIOMLTSend() uint16        { return r.sendWord }
func (r *fakeRegisters) ReadSIOData8() uint8           { return r.data8 }
func (r *fakeRegisters) ReadSIOData32() (uint16, uint16) { return r.data32Lo, r.data32Hi }
func (r *fakeRegisters) WriteMultiRegisters(v [4]uint16) { r.multi = v }
func (r *fakeRegisters) WriteSIOData8(v uint16)          { r.data8 = uint8(v) }
func (r *fakeRegisters) WriteSIOData32(lo, hi uint16)    { r.data32Lo, r.data32Hi = lo, hi }
func (r *fakeRegisters) SetBusy(busy bool)               { r.busy = busy }
func (r *fakeRegisters) SetMultiplayerID(id int)         { r.multiID = id }
func (r *fakeRegisters) SetRCNTReady(ready bool)         { r.rcntReady = ready }
func (r *fakeRegisters) IdleSO() bool                    { return r.idleSO }
func (r *fakeRegisters) SetSI(si bool)                   { r.si = si }
func (r *fakeRegisters) IRQEnabled() bool                { return r.irqEnabled }
func (r *fakeRegisters) RaiseSIOIRQ()                    { r.irqRaised++ }

// fakeHost is a single-threaded Host: Wait always succeeds immediately
// since tests drive the protocol by hand in the correct order rather
// than through real concurrent scheduling.
type fakeHost struct {
	signaled     uint32
	waitCalls    []uint32
	signalCalls  []uint32
	addCycles    map[int][]int32
	unloaded     []int
	transferCost int32
}

func newFakeHost() *fakeHost {
	return &fakeHost{addCycles: make(map[int][]int32), transferCost: 2048}
}

func (h *fakeHost) Wait(mask uint32) bool {
	h.waitCalls = append(h.waitCalls, mask)
	return true
}

func (h *fakeHost) Signal(mask uint32) {
	h.signaled |= mask
	h.signalCalls = append(h.signalCalls, mask)
}

func (h *fakeHost) AddCycles(id int, cycles int32) {
	h.addCycles[id] = append(h.addCycles[id], cycles)
}

func (h *fakeHost) UseCycles(id int, cycles int32) int32 {
	return 0
}

func (h *fakeHost) Unload(id int) {
	h.unloaded = append(h.unloaded, id)
}

func (h *fakeHost) MultiTransferCycles(baud uint8, attached int) int32 {
	return h.transferCost
}

// newMultiMesh builds attached nodes for a MULTI-mode transfer of n
// consoles, sharing host as the single TransferState's Host.
func newMultiMesh(n int, host Host) (*TransferState, []*Node, []*fakeRegisters) {
	ts := NewTransferState(host)
	nodes := make([]*Node, n)
	regs := make([]*fakeRegisters, n)
	for i := 0; i < n; i++ {
		r := &fakeRegisters{}
		node := NewNode(r)
		ts.Attach(node)
		node.Load(ModeMulti)
		nodes[i] = node
		regs[i] = r
	}
	return ts, nodes, regs
}

// newNormalMesh builds attached nodes for a NORMAL-8/NORMAL-32
// transfer of n consoles, sharing host as the single TransferState's
// Host.
func newNormalMesh(n int, mode Mode, host Host) (*TransferState, []*Node, []*fakeRegisters) {
	ts := NewTransferState(host)
	nodes := make([]*Node, n)
	regs := make([]*fakeRegisters, n)
	for i := 0; i < n; i++ {
		r := &fakeRegisters{}
		node := NewNode(r)
		ts.Attach(node)
		node.Load(mode)
		nodes[i] = node
		regs[i] = r
	}
	return ts, nodes, regs
}
