package sff

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	reporterMu sync.RWMutex
	reporter   logrus.FieldLogger = logrus.StandardLogger()
)

// SetReporter replaces the logger Valid writes diagnostics to.
func SetReporter(l logrus.FieldLogger) {
	reporterMu.Lock()
	defer reporterMu.Unlock()

	reporter = l
}

func currentReporter() logrus.FieldLogger {
	reporterMu.RLock()
	defer reporterMu.RUnlock()

	return reporter
}

// Info is the decoded description of one module. It is built once by NewInfo
// or Invalidate and not modified afterwards.
type Info struct {
	Eeprom Idprom

	Vendor   string
	Model    string
	Serial   string
	Revision string

	SFPType    SFPType
	ModuleType ModuleType
	MediaType  MediaType
	Caps       ModuleCaps

	Length     int
	LengthDesc string

	// computed checksums
	CCBase uint8
	CCExt  uint8

	Supported bool
}

// NewInfo decodes b. Only a buffer of the wrong size is an error; anything
// the decoder does not recognize is reported through INVALID values and
// Supported == false.
func NewInfo(b []byte) (*Info, error) {
	p, err := NewIdprom(b)
	if err != nil {
		return nil, err
	}

	info := &Info{Eeprom: p}
	info.SFPType = SFPTypeGet(&info.Eeprom)

	info.Vendor = Vendor(&info.Eeprom, info.SFPType)
	info.Model = Model(&info.Eeprom, info.SFPType)
	info.Serial = Serial(&info.Eeprom, info.SFPType)
	info.Revision = Revision(&info.Eeprom, info.SFPType)
	info.Length, info.LengthDesc = CableLength(&info.Eeprom, info.SFPType)

	info.CCBase, info.CCExt = Checksums(&info.Eeprom)

	info.ModuleType = ModuleTypeGet(&info.Eeprom)
	info.MediaType = MediaTypeGet(info.ModuleType)
	info.Caps = ModuleCapsGet(&info.Eeprom)

	info.Supported = info.SFPType.Valid() && info.ModuleType.Valid() && info.checksumsMatch()

	return info, nil
}

// Invalidate returns the sentinel record of an unusable module.
func Invalidate() *Info {
	return &Info{
		SFPType:    SFPTypeInvalid,
		ModuleType: ModuleTypeInvalid,
		MediaType:  MediaTypeInvalid,
		Length:     -1,
		LengthDesc: lengthNA,
	}
}

func (i *Info) checksumsMatch() bool {
	base, ext := StoredChecksums(&i.Eeprom)
	return base == i.CCBase && ext == i.CCExt
}

// Problems lists the reasons the record is not supported.
func (i *Info) Problems() []string {
	var problems []string

	if !i.SFPType.Valid() {
		problems = append(problems, fmt.Sprintf("unrecognized identifier 0x%02x", i.Eeprom[0]))
	}

	if !i.ModuleType.Valid() {
		problems = append(problems, "unrecognized module type")
	}

	base, ext := StoredChecksums(&i.Eeprom)
	if base != i.CCBase {
		problems = append(problems, fmt.Sprintf("base checksum mismatch: computed 0x%02x, stored 0x%02x", i.CCBase, base))
	}

	if ext != i.CCExt {
		problems = append(problems, fmt.Sprintf("extended checksum mismatch: computed 0x%02x, stored 0x%02x", i.CCExt, ext))
	}

	return problems
}

// Valid returns Supported. With verbose, the reasons for an unsupported
// record are written to the reporter.
func (i *Info) Valid(verbose bool) bool {
	if verbose && !i.Supported {
		l := currentReporter().WithFields(logrus.Fields{
			"vendor": i.Vendor,
			"model":  i.Model,
			"serial": i.Serial,
		})

		for _, p := range i.Problems() {
			l.Warn(p)
		}
	}

	return i.Supported
}

func (i *Info) AsLogFields() []any {
	return []any{
		"sfpType", i.SFPType.String(),
		"moduleType", i.ModuleType.String(),
		"mediaType", i.MediaType.String(),
		"caps", i.Caps.String(),
		"vendor", i.Vendor,
		"model", i.Model,
		"serial", i.Serial,
		"supported", i.Supported,
	}
}
