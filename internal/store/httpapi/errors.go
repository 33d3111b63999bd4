package httpapi

import "github.com/pkg/errors"

var (
	ErrHTTPSourceConfig = errors.New("http source configuration error")
	ErrOIDCProvider     = errors.New("oidc provider error")
	ErrRequest          = errors.New("idprom request error")
	ErrUnexpectedStatus = errors.New("idprom request returned unexpected status")
)
