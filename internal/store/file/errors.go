package file

import "github.com/pkg/errors"

var (
	ErrDir      = errors.New("idprom directory error")
	ErrPortName = errors.New("invalid port name")
	ErrRead     = errors.New("idprom file read error")
)
