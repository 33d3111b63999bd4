package sff

import (
	"strings"

	"github.com/pkg/errors"
)

const invalidName = "INVALID"

// enumEntry is one row of a taxonomy table. The table is the single source
// of truth for the value, its name and its description.
type enumEntry[T ~int] struct {
	value T
	name  string
	desc  string
}

func entryFor[T ~int](table []enumEntry[T], v T) (enumEntry[T], bool) {
	for _, e := range table {
		if e.value == v {
			return e, true
		}
	}

	return enumEntry[T]{}, false
}

// parseName resolves name case-sensitively. An exact match always wins; with
// substr the first row whose name starts with name is returned.
func parseName[T ~int](table []enumEntry[T], kind, name string, substr bool) (T, error) {
	for _, e := range table {
		if e.name == name {
			return e.value, nil
		}
	}

	if substr && name != "" {
		for _, e := range table {
			if strings.HasPrefix(e.name, name) {
				return e.value, nil
			}
		}
	}

	return -1, errors.Wrapf(ErrUnknownName, "%s %q", kind, name)
}

func valuesOf[T ~int](table []enumEntry[T]) []T {
	values := make([]T, 0, len(table))
	for _, e := range table {
		values = append(values, e.value)
	}

	return values
}

// SFPType is the transceiver form factor.
type SFPType int

const (
	SFPTypeSFP SFPType = iota
	SFPTypeQSFP
	SFPTypeQSFPPlus
	SFPTypeQSFP28

	SFPTypeInvalid SFPType = -1
)

var sfpTypes = []enumEntry[SFPType]{
	{SFPTypeSFP, "SFP", "SFP"},
	{SFPTypeQSFP, "QSFP", "QSFP"},
	{SFPTypeQSFPPlus, "QSFP_PLUS", "QSFP+"},
	{SFPTypeQSFP28, "QSFP28", "QSFP28"},
}

func (t SFPType) String() string {
	if e, ok := entryFor(sfpTypes, t); ok {
		return e.name
	}

	return invalidName
}

// Desc returns the human readable form factor.
func (t SFPType) Desc() string {
	if e, ok := entryFor(sfpTypes, t); ok {
		return e.desc
	}

	return invalidName
}

func (t SFPType) Valid() bool {
	_, ok := entryFor(sfpTypes, t)
	return ok
}

// IsQSFP reports whether t uses the SFF-8436/8636 register map.
func (t SFPType) IsQSFP() bool {
	return t == SFPTypeQSFP || t == SFPTypeQSFPPlus || t == SFPTypeQSFP28
}

// ParseSFPType returns the SFPType named name.
func ParseSFPType(name string, substr bool) (SFPType, error) {
	return parseName(sfpTypes, "sfp type", name, substr)
}

// SFPTypeValues lists every valid SFPType in order.
func SFPTypeValues() []SFPType {
	return valuesOf(sfpTypes)
}

// ModuleType is the most specific classification of a module.
type ModuleType int

const (
	ModuleType100GAOC ModuleType = iota
	ModuleType100GBaseCR4
	ModuleType100GBaseSR4
	ModuleType100GBaseLR4
	ModuleType100GCWDM4
	ModuleType40GBaseCR4
	ModuleType40GBaseSR4
	ModuleType40GBaseLR4
	ModuleType40GBaseActive
	ModuleType40GBaseCR
	ModuleType40GBaseSR2
	ModuleType10GBaseSR
	ModuleType10GBaseLR
	ModuleType10GBaseLRM
	ModuleType10GBaseER
	ModuleType10GBaseCR
	ModuleType10GBaseSX
	ModuleType10GBaseLX
	ModuleType10GBaseZR
	ModuleType10GBaseSRL
	ModuleType1GBaseSX
	ModuleType1GBaseLX
	ModuleType1GBaseCX
	ModuleType1GBaseT
	ModuleType100BaseLX
	ModuleType100BaseFX

	ModuleTypeInvalid ModuleType = -1
)

var moduleTypes = []enumEntry[ModuleType]{
	{ModuleType100GAOC, "100G_AOC", "100G-AOC"},
	{ModuleType100GBaseCR4, "100G_BASE_CR4", "100GBASE-CR4"},
	{ModuleType100GBaseSR4, "100G_BASE_SR4", "100GBASE-SR4"},
	{ModuleType100GBaseLR4, "100G_BASE_LR4", "100GBASE-LR4"},
	{ModuleType100GCWDM4, "100G_CWDM4", "100G-CWDM4"},
	{ModuleType40GBaseCR4, "40G_BASE_CR4", "40GBASE-CR4"},
	{ModuleType40GBaseSR4, "40G_BASE_SR4", "40GBASE-SR4"},
	{ModuleType40GBaseLR4, "40G_BASE_LR4", "40GBASE-LR4"},
	{ModuleType40GBaseActive, "40G_BASE_ACTIVE", "40GBASE-ACTIVE"},
	{ModuleType40GBaseCR, "40G_BASE_CR", "40GBASE-CR"},
	{ModuleType40GBaseSR2, "40G_BASE_SR2", "40GBASE-SR2"},
	{ModuleType10GBaseSR, "10G_BASE_SR", "10GBASE-SR"},
	{ModuleType10GBaseLR, "10G_BASE_LR", "10GBASE-LR"},
	{ModuleType10GBaseLRM, "10G_BASE_LRM", "10GBASE-LRM"},
	{ModuleType10GBaseER, "10G_BASE_ER", "10GBASE-ER"},
	{ModuleType10GBaseCR, "10G_BASE_CR", "10GBASE-CR"},
	{ModuleType10GBaseSX, "10G_BASE_SX", "10GBASE-SX"},
	{ModuleType10GBaseLX, "10G_BASE_LX", "10GBASE-LX"},
	{ModuleType10GBaseZR, "10G_BASE_ZR", "10GBASE-ZR"},
	{ModuleType10GBaseSRL, "10G_BASE_SRL", "10GBASE-SRL"},
	{ModuleType1GBaseSX, "1G_BASE_SX", "1000BASE-SX"},
	{ModuleType1GBaseLX, "1G_BASE_LX", "1000BASE-LX"},
	{ModuleType1GBaseCX, "1G_BASE_CX", "1000BASE-CX"},
	{ModuleType1GBaseT, "1G_BASE_T", "1000BASE-T"},
	{ModuleType100BaseLX, "100_BASE_LX", "100BASE-LX"},
	{ModuleType100BaseFX, "100_BASE_FX", "100BASE-FX"},
}

func (m ModuleType) String() string {
	if e, ok := entryFor(moduleTypes, m); ok {
		return e.name
	}

	return invalidName
}

// Desc returns the IEEE style name of the module type, e.g. 100GBASE-SR4.
func (m ModuleType) Desc() string {
	if e, ok := entryFor(moduleTypes, m); ok {
		return e.desc
	}

	return invalidName
}

func (m ModuleType) Valid() bool {
	_, ok := entryFor(moduleTypes, m)
	return ok
}

// ParseModuleType returns the ModuleType named name.
func ParseModuleType(name string, substr bool) (ModuleType, error) {
	return parseName(moduleTypes, "module type", name, substr)
}

// ModuleTypeValues lists every valid ModuleType in order.
func ModuleTypeValues() []ModuleType {
	return valuesOf(moduleTypes)
}

// MediaType tells copper from fiber.
type MediaType int

const (
	MediaTypeCopper MediaType = iota
	MediaTypeFiber

	MediaTypeInvalid MediaType = -1
)

var mediaTypes = []enumEntry[MediaType]{
	{MediaTypeCopper, "COPPER", "Copper"},
	{MediaTypeFiber, "FIBER", "Fiber"},
}

func (m MediaType) String() string {
	if e, ok := entryFor(mediaTypes, m); ok {
		return e.name
	}

	return invalidName
}

// Desc returns the human readable media type.
func (m MediaType) Desc() string {
	if e, ok := entryFor(mediaTypes, m); ok {
		return e.desc
	}

	return invalidName
}

func (m MediaType) Valid() bool {
	_, ok := entryFor(mediaTypes, m)
	return ok
}

// ParseMediaType returns the MediaType named name.
func ParseMediaType(name string, substr bool) (MediaType, error) {
	return parseName(mediaTypes, "media type", name, substr)
}

// MediaTypeValues lists every valid MediaType in order.
func MediaTypeValues() []MediaType {
	return valuesOf(mediaTypes)
}

// ModuleCaps is a bitmask of advertised link speeds.
type ModuleCaps int

const (
	ModuleCaps100M ModuleCaps = 1 << iota
	ModuleCaps1G
	ModuleCaps10G
	ModuleCaps40G
	ModuleCaps100G

	moduleCapsAll = ModuleCaps100M | ModuleCaps1G | ModuleCaps10G | ModuleCaps40G | ModuleCaps100G
)

var moduleCaps = []enumEntry[ModuleCaps]{
	{ModuleCaps100M, "F_100", "100M"},
	{ModuleCaps1G, "F_1G", "1G"},
	{ModuleCaps10G, "F_10G", "10G"},
	{ModuleCaps40G, "F_40G", "40G"},
	{ModuleCaps100G, "F_100G", "100G"},
}

// Has reports whether every bit of flag is set.
func (c ModuleCaps) Has(flag ModuleCaps) bool {
	return flag != 0 && c&flag == flag
}

func (c ModuleCaps) Valid() bool {
	return c&^moduleCapsAll == 0
}

// String joins the names of the set bits with "|", or returns "NONE".
func (c ModuleCaps) String() string {
	return c.join(func(e enumEntry[ModuleCaps]) string { return e.name }, "|", "NONE")
}

// Desc joins the speeds of the set bits, e.g. "10G,40G".
func (c ModuleCaps) Desc() string {
	return c.join(func(e enumEntry[ModuleCaps]) string { return e.desc }, ",", "none")
}

func (c ModuleCaps) join(field func(enumEntry[ModuleCaps]) string, sep, empty string) string {
	if c == 0 {
		return empty
	}

	var parts []string
	for _, e := range moduleCaps {
		if c.Has(e.value) {
			parts = append(parts, field(e))
		}
	}

	if !c.Valid() {
		parts = append(parts, invalidName)
	}

	return strings.Join(parts, sep)
}

// ParseModuleCaps returns the single capability flag named name.
func ParseModuleCaps(name string, substr bool) (ModuleCaps, error) {
	c, err := parseName(moduleCaps, "module caps", name, substr)
	if err != nil {
		return 0, err
	}

	return c, nil
}

// ModuleCapsValues lists every capability flag in bit order.
func ModuleCapsValues() []ModuleCaps {
	return valuesOf(moduleCaps)
}
