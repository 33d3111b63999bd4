package sff

import (
	"github.com/pkg/errors"
)

// IdpromSize is the size of the decoded EEPROM image.
const IdpromSize = 256

// Identifier byte values (SFF-8024 table 4-1).
const (
	identSFP      = 0x03
	identQSFP     = 0x0C
	identQSFPPlus = 0x0D
	identQSFP28   = 0x11
)

// SFF-8024 table 4-3 connector code of a direct-attach copper cable.
const connectorCopperPigtail = 0x21

// Idprom is a captured EEPROM image. SFP modules are described by the A0h
// page in bytes 0-255; QSFP modules by lower page 00h (0-127) followed by
// upper page 00h (128-255).
type Idprom [IdpromSize]byte

// NewIdprom copies b into an Idprom. It is the only place a structural
// error can come from.
func NewIdprom(b []byte) (Idprom, error) {
	var p Idprom

	if len(b) != IdpromSize {
		return p, errors.Wrapf(ErrIdpromSize, "got %d bytes", len(b))
	}

	copy(p[:], b)

	return p, nil
}

// span is a half-open byte range [start, end).
type span struct {
	start, end int
}

func (s span) of(p *Idprom) []byte {
	return p[s.start:s.end]
}

// layout is the register map of one family. Offsets that do not exist in
// the family are -1.
type layout struct {
	identifier int
	connector  int
	compliance int // 10G Ethernet (SFP) or 10/40G Ethernet (QSFP)
	gbe        int // Gigabit and Fast Ethernet compliance
	cableTech  int
	bitRate    int // nominal, units of 100 MBd
	lengthKm   int // single mode, km
	lengthCu   int // copper cable assembly, m
	lengthOM3  int
	om3Unit    int // metres per count of lengthOM3
	deviceTech int
	extended   int // SFF-8024 extended compliance code
	wavelength int // two bytes, big endian
	waveDiv    int // divisor giving nm

	vendor   span
	model    span
	serial   span
	revision span

	ccBase      span
	ccBaseStore int
	ccExt       span
	ccExtStore  int
}

var (
	sfpLayout = &layout{
		identifier: 0,
		connector:  2,
		compliance: 3,
		gbe:        6,
		cableTech:  8,
		bitRate:    12,
		lengthKm:   14,
		lengthCu:   18,
		lengthOM3:  19,
		om3Unit:    10,
		deviceTech: -1,
		extended:   36,
		wavelength: 60,
		waveDiv:    1,

		vendor:   span{20, 36},
		model:    span{40, 56},
		serial:   span{68, 84},
		revision: span{56, 60},

		ccBase:      span{0, 63},
		ccBaseStore: 63,
		ccExt:       span{64, 95},
		ccExtStore:  95,
	}

	qsfpLayout = &layout{
		identifier: 128,
		connector:  130,
		compliance: 131,
		gbe:        134,
		cableTech:  -1,
		bitRate:    140,
		lengthKm:   142,
		lengthCu:   146,
		lengthOM3:  143,
		om3Unit:    2,
		deviceTech: 147,
		extended:   192,
		wavelength: 186,
		waveDiv:    20,

		vendor:   span{148, 164},
		model:    span{168, 184},
		serial:   span{196, 212},
		revision: span{184, 186},

		ccBase:      span{128, 191},
		ccBaseStore: 191,
		ccExt:       span{192, 223},
		ccExtStore:  223,
	}
)

// layoutFor returns the register map for t, or nil for an invalid type.
func layoutFor(t SFPType) *layout {
	switch {
	case t == SFPTypeSFP:
		return sfpLayout
	case t.IsQSFP():
		return qsfpLayout
	default:
		return nil
	}
}

// wavelengthNm returns the laser wavelength in nm, 0 when not specified.
func (l *layout) wavelengthNm(p *Idprom) int {
	raw := int(p[l.wavelength])<<8 | int(p[l.wavelength+1])
	return raw / l.waveDiv
}

// bitRateMBd returns the nominal signalling rate in MBd.
func (l *layout) bitRateMBd(p *Idprom) int {
	return int(p[l.bitRate]) * 100
}

// isCableAssembly reports a direct-attach cable. SFP advertises it in the
// SFP+ cable technology bits, QSFP through the connector or the device
// technology nibble.
func (l *layout) isCableAssembly(p *Idprom) bool {
	if l.cableTech >= 0 {
		return p[l.cableTech]&(cablePassive|cableActive) != 0
	}

	return p[l.connector] == connectorCopperPigtail || p[l.deviceTech]>>4 >= deviceTechCopperMin
}
