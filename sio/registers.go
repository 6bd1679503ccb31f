package sio

// SIO register addresses, taken from the GBA's I/O register map. Only
// the subset the lockstep protocol touches is named here; the rest of
// the map is out of scope for this package.
const (
	RegSIOData32Lo uint16 = 0x120 // alias SIOMULTI0
	RegSIOMulti0   uint16 = 0x120
	RegSIOData32Hi uint16 = 0x122 // alias SIOMULTI1
	RegSIOMulti1   uint16 = 0x122
	RegSIOMulti2   uint16 = 0x124
	RegSIOMulti3   uint16 = 0x126
	RegSIOCNT      uint16 = 0x128
	RegSIOMLTSend  uint16 = 0x12A // alias SIODATA8
	RegSIOData8    uint16 = 0x12A
	RegRCNT        uint16 = 0x134
)
