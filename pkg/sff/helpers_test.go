package sff

// idprom builds a module image with the identifier set, applies the
// register edits and recomputes both checksums.
func idprom(ident byte, edits map[int]byte) []byte {
	var p Idprom

	p[0] = ident
	if ident != identSFP {
		p[128] = ident
	}

	for off, v := range edits {
		p[off] = v
	}

	p.UpdateChecksums()

	return p[:]
}

func sfp(edits map[int]byte) []byte {
	return idprom(identSFP, edits)
}

// withString returns edits with s written at off, space padded to width.
func withString(edits map[int]byte, off, width int, s string) map[int]byte {
	if edits == nil {
		edits = map[int]byte{}
	}

	for i := 0; i < width; i++ {
		c := byte(' ')
		if i < len(s) {
			c = s[i]
		}

		edits[off+i] = c
	}

	return edits
}

// wavelength encodes nm into the two wavelength bytes of the family.
func wavelength(edits map[int]byte, qsfp bool, nm int) map[int]byte {
	off, raw := 60, nm
	if qsfp {
		off, raw = 186, nm*20
	}

	edits[off] = byte(raw >> 8)
	edits[off+1] = byte(raw)

	return edits
}
