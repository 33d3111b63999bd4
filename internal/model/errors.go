package model

import (
	"github.com/pkg/errors"
)

var (
	ErrConfig        = errors.New("configuration error")
	ErrInvalidSource = errors.New("invalid idprom source")
	ErrNoPorts       = errors.New("no ports configured")
	ErrModuleAbsent  = errors.New("no module present in port")
	ErrScanFailed    = errors.New("scan failed")
)
