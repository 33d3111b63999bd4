package sff

// checksumLayout picks the regions to sum. An unrecognized identifier falls
// back to the SFF-8472 A0h regions, the page byte 0 belongs to.
func checksumLayout(p *Idprom) *layout {
	if l := layoutFor(SFPTypeGet(p)); l != nil {
		return l
	}

	return sfpLayout
}

func sum8(b []byte) uint8 {
	var cc uint8
	for _, v := range b {
		cc += v
	}

	return cc
}

// Checksums computes the base and extended region checksums: the low eight
// bits of the sum of every byte in the region.
func Checksums(p *Idprom) (base, ext uint8) {
	l := checksumLayout(p)
	return sum8(l.ccBase.of(p)), sum8(l.ccExt.of(p))
}

// StoredChecksums returns the checksum bytes the module carries.
func StoredChecksums(p *Idprom) (base, ext uint8) {
	l := checksumLayout(p)
	return p[l.ccBaseStore], p[l.ccExtStore]
}

// UpdateChecksums writes the computed checksums into their stored offsets.
func (p *Idprom) UpdateChecksums() {
	l := checksumLayout(p)
	base, ext := Checksums(p)
	p[l.ccBaseStore] = base
	p[l.ccExtStore] = ext
}
