// Package dryrun simulates a switch populated with transceivers.
package dryrun

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
)

// module describes a simulated transceiver.
type module struct {
	name   string
	ident  byte
	regs   map[int]byte
	vendor string
	model  string
	serial string

	empty        bool // no module in the cage
	corruptCheck bool // stored base checksum is wrong
}

// offsets of the string fields per family
type stringOffsets struct {
	vendor, model, serial int
}

var (
	sfpStrings  = stringOffsets{vendor: 20, model: 40, serial: 68}
	qsfpStrings = stringOffsets{vendor: 148, model: 168, serial: 196}
)

// Catalog of simulated modules. Ports map onto it by a hash of their name.
var catalog = []module{
	{
		name: "qsfp28-sr4", ident: 0x11, regs: map[int]byte{192: 0x02, 143: 35, 186: 0x42, 187: 0x68},
		vendor: "DRYRUN OPTICS", model: "QSFP28-SR4-100G", serial: "DRY28SR40001",
	},
	{
		name: "qsfp28-cr4", ident: 0x11, regs: map[int]byte{130: 0x23, 147: 0xA0, 146: 3, 192: 0x0B},
		vendor: "DRYRUN CABLES", model: "QSFP28-DAC-3M", serial: "DRY28CR40001",
	},
	{
		name: "qsfp-plus-lr4", ident: 0x0D, regs: map[int]byte{131: 0x02, 142: 10},
		vendor: "DRYRUN OPTICS", model: "QSFP-40G-LR4", serial: "DRY40LR40001",
	},
	{
		name: "sfp-plus-sr", ident: 0x03, regs: map[int]byte{3: 0x10, 12: 0x67, 19: 30, 60: 0x03, 61: 0x52},
		vendor: "DRYRUN OPTICS", model: "SFP-10G-SR", serial: "DRY10SR00001",
	},
	{
		name: "sfp-plus-dac", ident: 0x03, regs: map[int]byte{2: 0x21, 8: 0x04, 12: 0x67, 18: 1},
		vendor: "DRYRUN CABLES", model: "SFP-H10GB-CU1M", serial: "DRY10CR00001",
	},
	{
		name: "sfp-1000base-t", ident: 0x03, regs: map[int]byte{6: 0x08, 12: 0x0C},
		vendor: "DRYRUN COPPER", model: "SFP-1G-T", serial: "DRY1GT000001",
	},
	{
		name: "sfp-bad-checksum", ident: 0x03, regs: map[int]byte{6: 0x01, 12: 0x0D},
		vendor: "DRYRUN OPTICS", model: "SFP-1G-SX", serial: "DRY1GSX00001",
		corruptCheck: true,
	},
	{name: "empty", empty: true},
}

var errUnknownModule = errors.New("dryrun: unknown module profile")

// Store is the simulated source. Images are built on first read of a port
// and stay stable for the life of the Store.
type Store struct {
	mu      sync.Mutex
	modules map[string]*module
	images  map[string]sff.Idprom
}

func New() *Store {
	return &Store{
		modules: make(map[string]*module),
		images:  make(map[string]sff.Idprom),
	}
}

func (s *Store) Kind() model.SourceKind {
	return model.SourceKindDryRun
}

// Plug places the named catalog module into port.
func (s *Store) Plug(port, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range catalog {
		if catalog[i].name == name {
			s.modules[port] = &catalog[i]
			delete(s.images, port)

			return nil
		}
	}

	return errors.Wrap(errUnknownModule, name)
}

// IdpromByPort returns the simulated image of port.
func (s *Store) IdpromByPort(ctx context.Context, port string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.modules[port]
	if !ok {
		m = &catalog[portIndex(port)]
		s.modules[port] = m
	}

	if m.empty {
		return nil, errors.Wrap(model.ErrModuleAbsent, port)
	}

	image, ok := s.images[port]
	if !ok {
		image = m.build()
		s.images[port] = image
	}

	return image[:], nil
}

func portIndex(port string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(port))

	return int(h.Sum32() % uint32(len(catalog)))
}

func (m *module) build() sff.Idprom {
	var p sff.Idprom

	p[0] = m.ident

	offsets := sfpStrings
	if m.ident != 0x03 {
		p[128] = m.ident
		offsets = qsfpStrings
	}

	for off, v := range m.regs {
		p[off] = v
	}

	putString(&p, offsets.vendor, m.vendor)
	putString(&p, offsets.model, m.model)
	putString(&p, offsets.serial, m.serial)

	p.UpdateChecksums()

	if m.corruptCheck {
		// flip a reserved bit inside the base region after summing
		p[1] ^= 0x80
	}

	return p
}

// putString writes s space padded into a 16 byte field.
func putString(p *sff.Idprom, off int, s string) {
	for i := 0; i < 16; i++ {
		c := byte(' ')
		if i < len(s) {
			c = s[i]
		}

		p[off+i] = c
	}
}
