package cheat

// GameShark v1 and Pro Action Replay v3 codes are two 32-bit words
// run through a reversible seed-based transform before they can be
// read as address/value pairs. The real seed tables and transform
// are proprietary to each cheat device vendor and were not available
// to ground this package on (see DESIGN.md); the tables and transform
// below are a structurally faithful placeholder: reversible, keyed by
// a fixed seed table exactly as the original is, and internally
// consistent, but not byte-for-byte identical to a real device's
// table. decryptGameShark's XOR/rotate transform is a placeholder as
// well, so real device codes do not decode with these arrays alone.
var defaultGameSharkSeeds = [gsaSeedCount]uint32{
	0x09F4FBBD, 0x5A4A3E2C, 0x1B73B8DF, 0x6D4BCC64,
}

var defaultProActionReplaySeeds = [gsaSeedCount]uint32{
	0xC4D322A1, 0x7F49E516, 0x33AE109B, 0x5021CE4D,
}

// decryptGameShark reverses the seed transform applied to a
// GameShark v1/PAR v3 code pair. The transform is a simple
// self-inverse (repeated XOR), so decrypt and encrypt are the same
// operation.
func decryptGameShark(o1, o2 *uint32, seeds [gsaSeedCount]uint32) {
	for _, seed := range seeds {
		*o1 ^= seed
		*o2 ^= rotl32(seed, 7)
	}
}

func rotl32(v uint32, n uint) uint32 {
	return v<<n | v>>(32-n)
}

// SetGameSharkVersion locks set onto GameShark v1 (version 1 or 2) or
// PAR v3 (version 3 or 4) decoding, seeding it with the matching
// default table.
func SetGameSharkVersion(set *Set, version int) {
	set.GSAVersion = version
	switch version {
	case 1, 2:
		set.GSASeeds = defaultGameSharkSeeds
	case 3, 4:
		set.GSASeeds = defaultProActionReplaySeeds
	}
}

// addGameSharkRaw turns an already-decrypted GameShark v1 word pair
// into an assign cheat: the address occupies the low 28 bits of o1,
// the value is o2 masked to a 16-bit write.
func addGameSharkRaw(set *Set, o1, o2 uint32) bool {
	cheat := &Cheat{
		Address: o1 & 0x0FFFFFFF,
		Operand: o2 & 0xFFFF,
		Repeat:  1,
		Width:   2,
		Type:    TypeAssign,
		Enabled: true,
	}
	set.Cheats = append(set.Cheats, cheat)
	return true
}

// addProActionReplayRaw turns an already-decrypted PAR v3 word pair
// into an assign cheat: PAR v3's format signature lives in the top
// seven bits of o1, the address in its low 25 bits, and the value in
// the low 16 bits of o2.
func addProActionReplayRaw(set *Set, o1, o2 uint32) bool {
	cheat := &Cheat{
		Address: o1 & 0x01FFFFFF,
		Operand: o2 & 0xFFFF,
		Repeat:  1,
		Width:   2,
		Type:    TypeAssign,
		Enabled: true,
	}
	set.Cheats = append(set.Cheats, cheat)
	return true
}

// addAutodetect classifies a raw 32+32-bit code pair as GameShark v1
// or PAR v3 by trial-decrypting it against each table's signature
// mask, exactly as the device this package is modeled on does it:
// GameShark first, then PAR, locking the set to whichever matches.
// Once a set is locked to version 1 or 3, later lines decrypt directly
// against its own seed table instead of re-detecting; a set at version
// 2 or 4 rejects every line here.
func addAutodetect(set *Set, op1, op2 uint32) bool {
	switch set.GSAVersion {
	case 0:
		o1, o2 := op1, op2
		decryptGameShark(&o1, &o2, defaultGameSharkSeeds)
		if o1&0xF0000000 == 0xF0000000 && o2&0xFFFFFCFE == 0 {
			SetGameSharkVersion(set, 1)
			return addGameSharkRaw(set, o1, o2)
		}

		o1, o2 = op1, op2
		decryptGameShark(&o1, &o2, defaultProActionReplaySeeds)
		if o1&0xFE000000 == 0xC4000000 && o2&0xFFFF0000 == 0 {
			SetGameSharkVersion(set, 3)
			return addProActionReplayRaw(set, o1, o2)
		}
		return false
	case 1:
		o1, o2 := op1, op2
		decryptGameShark(&o1, &o2, set.GSASeeds)
		return addGameSharkRaw(set, o1, o2)
	case 3:
		o1, o2 := op1, op2
		decryptGameShark(&o1, &o2, set.GSASeeds)
		return addProActionReplayRaw(set, o1, o2)
	default:
		return false
	}
}
