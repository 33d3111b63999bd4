package sff

import (
	"bytes"
	"strconv"
)

const lengthNA = "N/A"

// printable cuts b at the first NUL, trims trailing pad and masks every byte
// outside printable ASCII with '?', one output column per input byte.
func printable(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	b = bytes.TrimRight(b, " ")

	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			c = '?'
		}

		out[i] = c
	}

	return string(out)
}

func stringField(p *Idprom, t SFPType, field func(*layout) span) string {
	l := layoutFor(t)
	if l == nil {
		return ""
	}

	return printable(field(l).of(p))
}

// Vendor returns the vendor name.
func Vendor(p *Idprom, t SFPType) string {
	return stringField(p, t, func(l *layout) span { return l.vendor })
}

// Model returns the vendor part number.
func Model(p *Idprom, t SFPType) string {
	return stringField(p, t, func(l *layout) span { return l.model })
}

// Serial returns the vendor serial number.
func Serial(p *Idprom, t SFPType) string {
	return stringField(p, t, func(l *layout) span { return l.serial })
}

// Revision returns the vendor revision.
func Revision(p *Idprom, t SFPType) string {
	return stringField(p, t, func(l *layout) span { return l.revision })
}

// CableLength returns the length of a direct-attach cable assembly in
// metres and its description. Modules that are not cable assemblies, or do
// not state a length, yield -1 and "N/A".
func CableLength(p *Idprom, t SFPType) (int, string) {
	l := layoutFor(t)
	if l == nil || !l.isCableAssembly(p) {
		return -1, lengthNA
	}

	n := int(p[l.lengthCu])
	if n == 0 {
		return -1, lengthNA
	}

	return n, strconv.Itoa(n) + "m"
}
