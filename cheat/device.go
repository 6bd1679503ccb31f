package cheat

// Patcher is the external 16-bit ROM patch primitive a cheat device
// applies its ROM patches through. old receives the value being
// replaced so the patch can be reversed later; it is ignored (the
// caller may pass nil) when unpatching, mirroring the original
// patch16(addr, new, &old) contract.
type Patcher interface {
	Patch16(address uint32, newValue uint16, old *uint16)
}

// Device owns the cheat sets attached to one running machine.
type Device struct {
	Sets    []*Set
	patcher Patcher
	// attached reports whether the device currently has a machine to
	// patch against; with none attached, AddSet/RemoveSet/Refresh do
	// nothing but still track the set list.
	attached bool
}

// NewDevice returns a cheat device that applies ROM patches through
// patcher once attached.
func NewDevice(patcher Patcher) *Device {
	return &Device{patcher: patcher}
}

// CreateSet returns a new, unattached cheat set named name. It is not
// added to the device's set list until AddSet is called.
func (d *Device) CreateSet(name string) *Set {
	return NewSet(name)
}

// Attach marks the device as bound to a running machine, applying ROM
// patches for every set already added.
func (d *Device) Attach() {
	d.attached = true
	for _, set := range d.Sets {
		d.patchROM(set)
	}
}

// Detach reverses Attach, unpatching every set's ROM patches.
func (d *Device) Detach() {
	for _, set := range d.Sets {
		d.unpatchROM(set)
	}
	d.attached = false
}

// AddSet adds set to the device, installing its breakpoint hook and
// applying any of its ROM patches immediately if a machine is
// attached.
func (d *Device) AddSet(set *Set) {
	if set.hook == nil {
		set.hook = &breakpointHook{refs: 1}
	}
	d.Sets = append(d.Sets, set)
	d.addBreakpoint(set)
	d.patchROM(set)
}

// RemoveSet detaches set from the device, symmetrically unpatching
// its ROM patches and releasing its breakpoint hook.
func (d *Device) RemoveSet(set *Set) {
	d.unpatchROM(set)
	d.removeBreakpoint(set)
	for i, s := range d.Sets {
		if s == set {
			d.Sets = append(d.Sets[:i], d.Sets[i+1:]...)
			break
		}
	}
}

// Refresh re-applies any not-yet-applied, enabled ROM patches across
// every set (e.g. after a ROM reload). It does not touch RAM cheats
// directly; those are re-evaluated by the caller's own per-tick cheat
// scan against ActiveCheats.
func (d *Device) Refresh() {
	for _, set := range d.Sets {
		d.patchROM(set)
	}
}

// Toggle sets cheat.Enabled and immediately applies or unapplies every
// ROM patch owned by cheat, so a disabled cheat's ROM edits come out
// symmetrically with its toggle rather than waiting for the next
// Refresh. RAM cheats have no such symmetric path: they are simply
// skipped by ActiveCheats on the caller's next per-tick scan.
func (d *Device) Toggle(cheat *Cheat, enabled bool) {
	cheat.Enabled = enabled
	if !d.attached {
		return
	}
	for _, set := range d.Sets {
		for i := range set.ROMPatches {
			p := &set.ROMPatches[i]
			if !p.Exists || p.Cheat != cheat {
				continue
			}
			if enabled && !p.Applied {
				d.patcher.Patch16(p.Address, p.NewValue, &p.OldValue)
				p.Applied = true
			} else if !enabled && p.Applied {
				d.patcher.Patch16(p.Address, p.OldValue, nil)
				p.Applied = false
			}
		}
	}
}

func (d *Device) patchROM(set *Set) {
	if !d.attached {
		return
	}
	for i := range set.ROMPatches {
		p := &set.ROMPatches[i]
		if !p.Exists || p.Applied {
			continue
		}
		if p.Cheat != nil && !p.Cheat.Enabled {
			continue
		}
		d.patcher.Patch16(p.Address, p.NewValue, &p.OldValue)
		p.Applied = true
	}
}

func (d *Device) unpatchROM(set *Set) {
	if !d.attached {
		return
	}
	for i := range set.ROMPatches {
		p := &set.ROMPatches[i]
		if !p.Exists || !p.Applied {
			continue
		}
		d.patcher.Patch16(p.Address, p.OldValue, nil)
		p.Applied = false
	}
}

func (d *Device) addBreakpoint(set *Set) {
	if !d.attached || set.hook == nil {
		return
	}
	set.hook.reentries++
	if set.hook.reentries > 1 {
		return
	}
	set.hook.install()
}

func (d *Device) removeBreakpoint(set *Set) {
	if !d.attached || set.hook == nil {
		return
	}
	set.hook.reentries--
	if set.hook.reentries > 0 {
		return
	}
	set.hook.uninstall()
}
