// Package sff decodes the identification EEPROM of pluggable SFP and QSFP
// family transceivers (SFF-8472, SFF-8436 and SFF-8636 register maps).
//
// NewInfo turns a raw 256 byte idprom into an Info record holding the form
// factor, module type, media type, speed capabilities, vendor strings, cable
// length and the computed checksums. Unrecognized or corrupt contents are
// never reported as errors; they classify to the INVALID sentinels and leave
// Info.Supported false. Only a buffer of the wrong size is an error.
//
// Every function in this package is a pure function of its input, so
// independent buffers may be decoded concurrently without locking.
package sff
