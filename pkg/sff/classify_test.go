package sff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSFPTypeGet(t *testing.T) {
	tests := []struct {
		ident byte
		want  SFPType
	}{
		{identSFP, SFPTypeSFP},
		{identQSFP, SFPTypeQSFP},
		{identQSFPPlus, SFPTypeQSFPPlus},
		{identQSFP28, SFPTypeQSFP28},
		{0x00, SFPTypeInvalid},
		{0x01, SFPTypeInvalid},
		{0x0E, SFPTypeInvalid},
		{0xff, SFPTypeInvalid},
	}

	for _, tc := range tests {
		var p Idprom
		p[0] = tc.ident
		assert.Equal(t, tc.want, SFPTypeGet(&p), "identifier 0x%02x", tc.ident)
	}
}

func TestModuleTypeGet(t *testing.T) {
	tests := []struct {
		name   string
		ident  byte
		edits  map[int]byte
		module ModuleType
		media  MediaType
		caps   ModuleCaps
	}{
		{
			name:   "qsfp28 aoc",
			ident:  identQSFP28,
			edits:  map[int]byte{192: ext100GAOC5e5},
			module: ModuleType100GAOC,
			media:  MediaTypeFiber,
			caps:   ModuleCaps100G,
		},
		{
			name:   "qsfp28 cr4",
			ident:  identQSFP28,
			edits:  map[int]byte{192: ext100GCR4, 130: connectorCopperPigtail},
			module: ModuleType100GBaseCR4,
			media:  MediaTypeCopper,
			caps:   ModuleCaps100G,
		},
		{
			name:   "qsfp28 acc",
			ident:  identQSFP28,
			edits:  map[int]byte{192: ext100GACC1e12},
			module: ModuleType100GBaseCR4,
			media:  MediaTypeCopper,
			caps:   ModuleCaps100G,
		},
		{
			name:   "qsfp28 lr4",
			ident:  identQSFP28,
			edits:  map[int]byte{192: ext100GLR4},
			module: ModuleType100GBaseLR4,
			media:  MediaTypeFiber,
			caps:   ModuleCaps100G,
		},
		{
			name:   "qsfp plus cwdm4 with extended bit",
			ident:  identQSFPPlus,
			edits:  map[int]byte{131: complianceExtended, 192: ext100GCWDM4},
			module: ModuleType100GCWDM4,
			media:  MediaTypeFiber,
			caps:   ModuleCaps100G,
		},
		{
			name:   "qsfp plus extended code without extended bit",
			ident:  identQSFPPlus,
			edits:  map[int]byte{192: ext100GSR4},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
			caps:   ModuleCaps100G,
		},
		{
			name:   "unlisted 100G code",
			ident:  identQSFP28,
			edits:  map[int]byte{192: ext100GPSM4},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
			caps:   ModuleCaps100G,
		},
		{
			name:   "40G cr4",
			ident:  identQSFPPlus,
			edits:  map[int]byte{131: compliance40GCR4, 130: connectorCopperPigtail},
			module: ModuleType40GBaseCR4,
			media:  MediaTypeCopper,
			caps:   ModuleCaps40G,
		},
		{
			name:   "40G sr4",
			ident:  identQSFPPlus,
			edits:  map[int]byte{131: compliance40GSR4},
			module: ModuleType40GBaseSR4,
			media:  MediaTypeFiber,
			caps:   ModuleCaps40G,
		},
		{
			name:   "40G lr4",
			ident:  identQSFP,
			edits:  map[int]byte{131: compliance40GLR4},
			module: ModuleType40GBaseLR4,
			media:  MediaTypeFiber,
			caps:   ModuleCaps40G,
		},
		{
			name:   "40G active",
			ident:  identQSFPPlus,
			edits:  map[int]byte{131: compliance40GXLPPI},
			module: ModuleType40GBaseActive,
			media:  MediaTypeFiber,
			caps:   ModuleCaps40G,
		},
		{
			name:   "40G sr4 wins over 10G sr",
			ident:  identQSFPPlus,
			edits:  map[int]byte{131: compliance40GSR4 | compliance10GSR},
			module: ModuleType40GBaseSR4,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G | ModuleCaps40G,
		},
		{
			name:   "40G copper cable without compliance",
			ident:  identQSFPPlus,
			edits:  map[int]byte{130: connectorCopperPigtail, 140: 0x67},
			module: ModuleType40GBaseCR,
			media:  MediaTypeCopper,
		},
		{
			name:   "40G copper cable by device technology",
			ident:  identQSFPPlus,
			edits:  map[int]byte{147: 0xA0},
			module: ModuleType40GBaseCR,
			media:  MediaTypeCopper,
		},
		{
			name:   "40G copper cable below 10G per lane",
			ident:  identQSFPPlus,
			edits:  map[int]byte{130: connectorCopperPigtail, 140: 0x32},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
		},
		{
			name:   "40G sr2",
			ident:  identQSFPPlus,
			edits:  wavelength(map[int]byte{143: 50, 140: 0x67}, true, 850),
			module: ModuleType40GBaseSR2,
			media:  MediaTypeFiber,
		},
		{
			name:   "40G sr2 needs multimode length",
			ident:  identQSFPPlus,
			edits:  wavelength(map[int]byte{140: 0x67}, true, 850),
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
		},
		{
			name:   "qsfp 10G sr",
			ident:  identQSFP,
			edits:  map[int]byte{131: compliance10GSR},
			module: ModuleType10GBaseSR,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "qsfp 10G lr",
			ident:  identQSFP,
			edits:  map[int]byte{131: compliance10GLR},
			module: ModuleType10GBaseLR,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "qsfp 10G lrm",
			ident:  identQSFP,
			edits:  map[int]byte{131: compliance10GLRM},
			module: ModuleType10GBaseLRM,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "qsfp 1G sx",
			ident:  identQSFP,
			edits:  map[int]byte{134: gbe1GSX},
			module: ModuleType1GBaseSX,
			media:  MediaTypeFiber,
			caps:   ModuleCaps1G,
		},
		{
			name:   "qsfp 1G t",
			ident:  identQSFP,
			edits:  map[int]byte{134: gbe1GT},
			module: ModuleType1GBaseT,
			media:  MediaTypeCopper,
			caps:   ModuleCaps1G,
		},
		{
			name:   "sfp 10G sr",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GSR, 19: 30},
			module: ModuleType10GBaseSR,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp 10G srl",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GSR, 19: 10},
			module: ModuleType10GBaseSRL,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp 10G lr",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GLR},
			module: ModuleType10GBaseLR,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp 10G lrm",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GLRM},
			module: ModuleType10GBaseLRM,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp 10G er",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GER},
			module: ModuleType10GBaseER,
			media:  MediaTypeFiber,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp dual rate prefers 10G",
			ident:  identSFP,
			edits:  map[int]byte{3: compliance10GSR, 6: gbe1GSX},
			module: ModuleType10GBaseSR,
			media:  MediaTypeFiber,
			caps:   ModuleCaps1G | ModuleCaps10G,
		},
		{
			name:   "sfp passive dac",
			ident:  identSFP,
			edits:  map[int]byte{8: cablePassive, 2: connectorCopperPigtail, 12: 0x67},
			module: ModuleType10GBaseCR,
			media:  MediaTypeCopper,
		},
		{
			name:   "sfp passive dac without rate",
			ident:  identSFP,
			edits:  map[int]byte{8: cablePassive},
			module: ModuleType10GBaseCR,
			media:  MediaTypeCopper,
		},
		{
			name:   "sfp active copper cable",
			ident:  identSFP,
			edits:  map[int]byte{8: cableActive, 2: connectorCopperPigtail},
			module: ModuleType10GBaseCR,
			media:  MediaTypeCopper,
		},
		{
			name:   "sfp active optical cable",
			ident:  identSFP,
			edits:  map[int]byte{8: cableActive, 2: 0x07, 12: 0x67},
			module: ModuleType10GBaseSR,
			media:  MediaTypeFiber,
		},
		{
			name:   "sfp 10G zr by wavelength",
			ident:  identSFP,
			edits:  wavelength(map[int]byte{12: 0x67, 14: 80}, false, 1550),
			module: ModuleType10GBaseZR,
			media:  MediaTypeFiber,
		},
		{
			name:   "sfp 1550nm short reach",
			ident:  identSFP,
			edits:  wavelength(map[int]byte{12: 0x67, 14: 40}, false, 1550),
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
		},
		{
			name:   "sfp 10G lx by wavelength",
			ident:  identSFP,
			edits:  wavelength(map[int]byte{12: 0x67, 14: 10}, false, 1310),
			module: ModuleType10GBaseLX,
			media:  MediaTypeFiber,
		},
		{
			name:   "sfp 10G sx by wavelength",
			ident:  identSFP,
			edits:  wavelength(map[int]byte{12: 0x67}, false, 850),
			module: ModuleType10GBaseSX,
			media:  MediaTypeFiber,
		},
		{
			name:   "sfp 1G sx",
			ident:  identSFP,
			edits:  wavelength(map[int]byte{6: gbe1GSX, 12: 0x0D}, false, 850),
			module: ModuleType1GBaseSX,
			media:  MediaTypeFiber,
			caps:   ModuleCaps1G,
		},
		{
			name:   "sfp 1G lx",
			ident:  identSFP,
			edits:  map[int]byte{6: gbe1GLX},
			module: ModuleType1GBaseLX,
			media:  MediaTypeFiber,
			caps:   ModuleCaps1G,
		},
		{
			name:   "sfp 1G cx",
			ident:  identSFP,
			edits:  map[int]byte{6: gbe1GCX},
			module: ModuleType1GBaseCX,
			media:  MediaTypeCopper,
			caps:   ModuleCaps1G,
		},
		{
			name:   "sfp 100 lx",
			ident:  identSFP,
			edits:  map[int]byte{6: gbe100LX},
			module: ModuleType100BaseLX,
			media:  MediaTypeFiber,
			caps:   ModuleCaps100M,
		},
		{
			name:   "sfp 100 fx",
			ident:  identSFP,
			edits:  map[int]byte{6: gbe100FX},
			module: ModuleType100BaseFX,
			media:  MediaTypeFiber,
			caps:   ModuleCaps100M,
		},
		{
			name:   "sfp 10GBASE-T advertises caps only",
			ident:  identSFP,
			edits:  map[int]byte{36: ext10GBaseTSFI},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
			caps:   ModuleCaps10G,
		},
		{
			name:   "sfp ignores qsfp extended codes",
			ident:  identSFP,
			edits:  map[int]byte{36: ext100GSR4},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
		},
		{
			name:   "unknown identifier",
			ident:  0x05,
			edits:  map[int]byte{3: compliance10GSR, 6: gbe1GSX},
			module: ModuleTypeInvalid,
			media:  MediaTypeInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := NewInfo(idprom(tc.ident, tc.edits))
			require.NoError(t, err)

			assert.Equal(t, tc.module, info.ModuleType, "module %s", info.ModuleType)
			assert.Equal(t, tc.media, info.MediaType)
			assert.Equal(t, tc.caps, info.Caps, "caps %s", info.Caps)
			assert.Equal(t, tc.module.Valid() && info.SFPType.Valid(), info.Supported)
		})
	}
}

func TestMediaTypeGet(t *testing.T) {
	copper := map[ModuleType]bool{
		ModuleType100GBaseCR4: true,
		ModuleType40GBaseCR4:  true,
		ModuleType40GBaseCR:   true,
		ModuleType10GBaseCR:   true,
		ModuleType1GBaseCX:    true,
		ModuleType1GBaseT:     true,
	}

	for _, m := range ModuleTypeValues() {
		want := MediaTypeFiber
		if copper[m] {
			want = MediaTypeCopper
		}

		assert.Equal(t, want, MediaTypeGet(m), m.String())
	}

	assert.Equal(t, MediaTypeInvalid, MediaTypeGet(ModuleTypeInvalid))
	assert.Equal(t, MediaTypeInvalid, MediaTypeGet(ModuleType(99)))
}

func TestCableLength(t *testing.T) {
	tests := []struct {
		name   string
		ident  byte
		edits  map[int]byte
		length int
		desc   string
	}{
		{"sfp passive dac", identSFP, map[int]byte{8: cablePassive, 18: 3}, 3, "3m"},
		{"sfp dac without length", identSFP, map[int]byte{8: cablePassive}, -1, "N/A"},
		{"sfp optic", identSFP, map[int]byte{3: compliance10GSR, 18: 3}, -1, "N/A"},
		{"qsfp copper connector", identQSFPPlus, map[int]byte{130: connectorCopperPigtail, 146: 5}, 5, "5m"},
		{"qsfp copper device technology", identQSFP28, map[int]byte{147: 0xB0, 146: 2}, 2, "2m"},
		{"qsfp optic", identQSFP28, map[int]byte{147: 0x00, 146: 2}, -1, "N/A"},
		{"invalid", 0x00, map[int]byte{8: cablePassive, 18: 3}, -1, "N/A"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := NewInfo(idprom(tc.ident, tc.edits))
			require.NoError(t, err)

			assert.Equal(t, tc.length, info.Length)
			assert.Equal(t, tc.desc, info.LengthDesc)
		})
	}
}

func TestStringFields(t *testing.T) {
	edits := withString(nil, 20, 16, "FINISAR CORP.")
	edits = withString(edits, 40, 16, "FTLX8571D3BCL")
	edits = withString(edits, 56, 4, "A")
	edits = withString(edits, 68, 16, "AB12")
	edits[70] = 0x00
	edits[71] = 'Z'

	p, err := NewIdprom(sfp(edits))
	require.NoError(t, err)

	assert.Equal(t, "FINISAR CORP.", Vendor(&p, SFPTypeSFP))
	assert.Equal(t, "FTLX8571D3BCL", Model(&p, SFPTypeSFP))
	assert.Equal(t, "A", Revision(&p, SFPTypeSFP))
	assert.Equal(t, "AB", Serial(&p, SFPTypeSFP))

	assert.Empty(t, Vendor(&p, SFPTypeInvalid))
}

func TestStringFieldsNonPrintable(t *testing.T) {
	edits := withString(nil, 148, 16, "AC ME")
	edits[150] = 0x07
	edits[151] = 0x9f

	p, err := NewIdprom(idprom(identQSFP, edits))
	require.NoError(t, err)

	assert.Equal(t, "AC??E", Vendor(&p, SFPTypeQSFP))
}

func TestStringFieldsMultiByte(t *testing.T) {
	edits := withString(nil, 20, 16, "AB\xc3\xa9CD\xff\xfe")

	p, err := NewIdprom(sfp(edits))
	require.NoError(t, err)

	vendor := Vendor(&p, SFPTypeSFP)
	assert.Equal(t, "AB??CD??", vendor)
	assert.Len(t, vendor, 8)
}

func TestModuleCapsIgnoreHeuristicCables(t *testing.T) {
	tests := []struct {
		name   string
		ident  byte
		edits  map[int]byte
		module ModuleType
	}{
		{"sfp passive dac", identSFP, map[int]byte{8: cablePassive, 2: connectorCopperPigtail, 12: 0x67}, ModuleType10GBaseCR},
		{"qsfp+ copper pigtail", identQSFPPlus, map[int]byte{130: connectorCopperPigtail, 140: 0x67}, ModuleType40GBaseCR},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewIdprom(idprom(tc.ident, tc.edits))
			require.NoError(t, err)

			assert.Equal(t, tc.module, ModuleTypeGet(&p))
			assert.Equal(t, ModuleCaps(0), ModuleCapsGet(&p))
			assert.Equal(t, "NONE", ModuleCapsGet(&p).String())
		})
	}
}
