package sff

// 10G Ethernet compliance, SFF-8472 byte 3 and SFF-8636 byte 131.
const (
	complianceExtended = 0x80 // QSFP only: see the extended compliance byte
	compliance10GER    = 0x80 // SFP only
	compliance10GLRM   = 0x40
	compliance10GLR    = 0x20
	compliance10GSR    = 0x10
	compliance40GCR4   = 0x08
	compliance40GSR4   = 0x04
	compliance40GLR4   = 0x02
	compliance40GXLPPI = 0x01

	compliance10GMask = compliance10GSR | compliance10GLR | compliance10GLRM
	compliance40GMask = compliance40GCR4 | compliance40GSR4 | compliance40GLR4 | compliance40GXLPPI
)

// Gigabit and Fast Ethernet compliance, SFF-8472 byte 6 and SFF-8636 byte 134.
const (
	gbe100FX = 0x20
	gbe100LX = 0x10
	gbe1GT   = 0x08
	gbe1GCX  = 0x04
	gbe1GLX  = 0x02
	gbe1GSX  = 0x01

	gbe1GMask   = gbe1GT | gbe1GCX | gbe1GLX | gbe1GSX
	gbe100MMask = gbe100FX | gbe100LX
)

// SFP+ cable technology, SFF-8472 byte 8.
const (
	cableActive  = 0x08
	cablePassive = 0x04
)

// SFF-8636 byte 147 upper nibble values from 0xA are copper cables.
const deviceTechCopperMin = 0x0A

// Extended specification compliance codes (SFF-8024 table 4-4).
const (
	ext100GAOC5e5   = 0x01
	ext100GSR4      = 0x02
	ext100GLR4      = 0x03
	ext100GER4      = 0x04
	ext100GSR10     = 0x05
	ext100GCWDM4    = 0x06
	ext100GPSM4     = 0x07
	ext100GACC5e5   = 0x08
	ext100GCR4      = 0x0B
	ext10GBaseTSFI  = 0x16
	ext100GCLR4     = 0x17
	ext100GAOC1e12  = 0x18
	ext100GACC1e12  = 0x19
	ext100GDWDM2    = 0x1A
	ext10GBaseTSR   = 0x1C
	ext100GSWDM4    = 0x20
	ext100GBiDi     = 0x21
	ext100GBaseDR   = 0x25
	ext100GBaseFR   = 0x26
	ext100GBaseLR   = 0x27
	ext100GBaseSR1  = 0x28
	ext100GBaseFR1  = 0x29
	ext100GBaseLR1  = 0x2A
	ext100GBaseSR12 = 0x2B
)

var ext100G = map[byte]bool{
	ext100GAOC5e5: true, ext100GSR4: true, ext100GLR4: true, ext100GER4: true,
	ext100GSR10: true, ext100GCWDM4: true, ext100GPSM4: true, ext100GACC5e5: true,
	ext100GCR4: true, ext100GCLR4: true, ext100GAOC1e12: true, ext100GACC1e12: true,
	ext100GDWDM2: true, ext100GSWDM4: true, ext100GBiDi: true, ext100GBaseDR: true,
	ext100GBaseFR: true, ext100GBaseLR: true, ext100GBaseSR1: true, ext100GBaseFR1: true,
	ext100GBaseLR1: true, ext100GBaseSR12: true,
}

// Nominal rate from which an unlabelled module counts as 10G per lane.
const rate10GMBd = 10000

var identifiers = map[byte]SFPType{
	identSFP:      SFPTypeSFP,
	identQSFP:     SFPTypeQSFP,
	identQSFPPlus: SFPTypeQSFPPlus,
	identQSFP28:   SFPTypeQSFP28,
}

// SFPTypeGet classifies the form factor from the identifier byte. It must
// run first: the result selects the register map every other decoder uses.
func SFPTypeGet(p *Idprom) SFPType {
	if t, ok := identifiers[p[0]]; ok {
		return t
	}

	return SFPTypeInvalid
}

// rule maps a register pattern to a module type.
type rule struct {
	module ModuleType
	match  func(l *layout, p *Idprom, t SFPType) bool
}

func complianceBit(m ModuleType, mask byte) rule {
	return rule{m, func(l *layout, p *Idprom, _ SFPType) bool {
		return p[l.compliance]&mask != 0
	}}
}

func gbeBit(m ModuleType, mask byte) rule {
	return rule{m, func(l *layout, p *Idprom, _ SFPType) bool {
		return p[l.gbe]&mask != 0
	}}
}

func extendedCode(m ModuleType, codes ...byte) rule {
	return rule{m, func(l *layout, p *Idprom, t SFPType) bool {
		if p[l.compliance]&complianceExtended == 0 && t != SFPTypeQSFP28 {
			return false
		}

		for _, c := range codes {
			if p[l.extended] == c {
				return true
			}
		}

		return false
	}}
}

func rateAtLeast10G(l *layout, p *Idprom) bool {
	return l.bitRateMBd(p) >= rate10GMBd
}

// rateUnset10G accepts cables that leave the nominal rate at zero.
func rateUnset10G(l *layout, p *Idprom) bool {
	return p[l.bitRate] == 0 || rateAtLeast10G(l, p)
}

func wavelengthIn(l *layout, p *Idprom, lo, hi int) bool {
	nm := l.wavelengthNm(p)
	return nm >= lo && nm <= hi
}

// Rules are evaluated in order and the first match wins: the highest speed
// first and, within one speed, the specific code before the generic one.
var qsfpRules = []rule{
	extendedCode(ModuleType100GAOC, ext100GAOC5e5, ext100GAOC1e12),
	extendedCode(ModuleType100GBaseCR4, ext100GCR4, ext100GACC5e5, ext100GACC1e12),
	extendedCode(ModuleType100GBaseSR4, ext100GSR4),
	extendedCode(ModuleType100GBaseLR4, ext100GLR4),
	extendedCode(ModuleType100GCWDM4, ext100GCWDM4),

	complianceBit(ModuleType40GBaseCR4, compliance40GCR4),
	complianceBit(ModuleType40GBaseSR4, compliance40GSR4),
	complianceBit(ModuleType40GBaseLR4, compliance40GLR4),
	complianceBit(ModuleType40GBaseActive, compliance40GXLPPI),
	{ModuleType40GBaseCR, func(l *layout, p *Idprom, _ SFPType) bool {
		return p[l.compliance]&^complianceExtended == 0 &&
			l.isCableAssembly(p) &&
			rateUnset10G(l, p)
	}},
	{ModuleType40GBaseSR2, func(l *layout, p *Idprom, _ SFPType) bool {
		return p[l.compliance]&^complianceExtended == 0 &&
			!l.isCableAssembly(p) &&
			p[l.lengthOM3] != 0 &&
			wavelengthIn(l, p, 832, 918) &&
			rateAtLeast10G(l, p)
	}},

	complianceBit(ModuleType10GBaseSR, compliance10GSR),
	complianceBit(ModuleType10GBaseLR, compliance10GLR),
	complianceBit(ModuleType10GBaseLRM, compliance10GLRM),

	gbeBit(ModuleType1GBaseSX, gbe1GSX),
	gbeBit(ModuleType1GBaseLX, gbe1GLX),
	gbeBit(ModuleType1GBaseCX, gbe1GCX),
	gbeBit(ModuleType1GBaseT, gbe1GT),
}

func sfpNo10GCompliance(l *layout, p *Idprom) bool {
	return p[l.compliance]&(compliance10GMask|compliance10GER) == 0
}

// sfpOptic10G is a 10G rate optic that sets no 10G compliance bit.
func sfpOptic10G(l *layout, p *Idprom) bool {
	return sfpNo10GCompliance(l, p) && !l.isCableAssembly(p) && rateAtLeast10G(l, p)
}

var sfpRules = []rule{
	{ModuleType10GBaseSRL, func(l *layout, p *Idprom, _ SFPType) bool {
		reach := int(p[l.lengthOM3]) * l.om3Unit
		return p[l.compliance]&compliance10GSR != 0 && reach > 0 && reach <= 100
	}},
	complianceBit(ModuleType10GBaseSR, compliance10GSR),
	complianceBit(ModuleType10GBaseLR, compliance10GLR),
	complianceBit(ModuleType10GBaseLRM, compliance10GLRM),
	complianceBit(ModuleType10GBaseER, compliance10GER),
	{ModuleType10GBaseCR, func(l *layout, p *Idprom, _ SFPType) bool {
		if !l.isCableAssembly(p) || !rateUnset10G(l, p) {
			return false
		}

		return p[l.cableTech]&cablePassive != 0 || p[l.connector] == connectorCopperPigtail
	}},
	{ModuleType10GBaseSR, func(l *layout, p *Idprom, _ SFPType) bool {
		// active optical cable
		return p[l.cableTech]&cableActive != 0 &&
			p[l.connector] != connectorCopperPigtail &&
			rateUnset10G(l, p)
	}},
	{ModuleType10GBaseZR, func(l *layout, p *Idprom, _ SFPType) bool {
		return sfpOptic10G(l, p) && wavelengthIn(l, p, 1530, 1570) && p[l.lengthKm] >= 80
	}},
	{ModuleType10GBaseLX, func(l *layout, p *Idprom, _ SFPType) bool {
		return sfpOptic10G(l, p) && wavelengthIn(l, p, 1290, 1330)
	}},
	{ModuleType10GBaseSX, func(l *layout, p *Idprom, _ SFPType) bool {
		return sfpOptic10G(l, p) && wavelengthIn(l, p, 830, 870)
	}},

	gbeBit(ModuleType1GBaseSX, gbe1GSX),
	gbeBit(ModuleType1GBaseLX, gbe1GLX),
	gbeBit(ModuleType1GBaseCX, gbe1GCX),
	gbeBit(ModuleType1GBaseT, gbe1GT),

	gbeBit(ModuleType100BaseLX, gbe100LX),
	gbeBit(ModuleType100BaseFX, gbe100FX),
}

func rulesFor(t SFPType) []rule {
	switch {
	case t == SFPTypeSFP:
		return sfpRules
	case t.IsQSFP():
		return qsfpRules
	default:
		return nil
	}
}

// ModuleTypeGet classifies the module from its compliance codes. It is
// total: unrecognized contents yield ModuleTypeInvalid.
func ModuleTypeGet(p *Idprom) ModuleType {
	t := SFPTypeGet(p)

	l := layoutFor(t)
	if l == nil {
		return ModuleTypeInvalid
	}

	for _, r := range rulesFor(t) {
		if r.match(l, p, t) {
			return r.module
		}
	}

	return ModuleTypeInvalid
}

var moduleMedia = map[ModuleType]MediaType{
	ModuleType100GAOC:       MediaTypeFiber,
	ModuleType100GBaseCR4:   MediaTypeCopper,
	ModuleType100GBaseSR4:   MediaTypeFiber,
	ModuleType100GBaseLR4:   MediaTypeFiber,
	ModuleType100GCWDM4:     MediaTypeFiber,
	ModuleType40GBaseCR4:    MediaTypeCopper,
	ModuleType40GBaseSR4:    MediaTypeFiber,
	ModuleType40GBaseLR4:    MediaTypeFiber,
	ModuleType40GBaseActive: MediaTypeFiber,
	ModuleType40GBaseCR:     MediaTypeCopper,
	ModuleType40GBaseSR2:    MediaTypeFiber,
	ModuleType10GBaseSR:     MediaTypeFiber,
	ModuleType10GBaseLR:     MediaTypeFiber,
	ModuleType10GBaseLRM:    MediaTypeFiber,
	ModuleType10GBaseER:     MediaTypeFiber,
	ModuleType10GBaseCR:     MediaTypeCopper,
	ModuleType10GBaseSX:     MediaTypeFiber,
	ModuleType10GBaseLX:     MediaTypeFiber,
	ModuleType10GBaseZR:     MediaTypeFiber,
	ModuleType10GBaseSRL:    MediaTypeFiber,
	ModuleType1GBaseSX:      MediaTypeFiber,
	ModuleType1GBaseLX:      MediaTypeFiber,
	ModuleType1GBaseCX:      MediaTypeCopper,
	ModuleType1GBaseT:       MediaTypeCopper,
	ModuleType100BaseLX:     MediaTypeFiber,
	ModuleType100BaseFX:     MediaTypeFiber,
}

// MediaTypeGet maps a module type to its media.
func MediaTypeGet(m ModuleType) MediaType {
	if media, ok := moduleMedia[m]; ok {
		return media
	}

	return MediaTypeInvalid
}

// ModuleCapsGet extracts the advertised speeds. It reads the compliance
// registers directly and does not depend on ModuleTypeGet, so a module that
// cannot be classified may still advertise a speed.
// The reverse also holds: a direct-attach cable that sets no compliance bit
// is classified as 10G_BASE_CR or 40G_BASE_CR by heuristics, yet advertises
// no caps. Callers choosing a port speed should fall back to ModuleType when
// caps are empty.
func ModuleCapsGet(p *Idprom) ModuleCaps {
	t := SFPTypeGet(p)

	l := layoutFor(t)
	if l == nil {
		return 0
	}

	var caps ModuleCaps

	compliance := p[l.compliance]
	gbe := p[l.gbe]
	ext := p[l.extended]

	if gbe&gbe1GMask != 0 {
		caps |= ModuleCaps1G
	}

	if t == SFPTypeSFP {
		if gbe&gbe100MMask != 0 {
			caps |= ModuleCaps100M
		}

		if compliance&(compliance10GMask|compliance10GER) != 0 || ext == ext10GBaseTSFI || ext == ext10GBaseTSR {
			caps |= ModuleCaps10G
		}

		return caps
	}

	if compliance&compliance10GMask != 0 {
		caps |= ModuleCaps10G
	}

	if compliance&compliance40GMask != 0 {
		caps |= ModuleCaps40G
	}

	if ext100G[ext] {
		caps |= ModuleCaps100G
	}

	return caps
}
