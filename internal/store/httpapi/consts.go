package httpapi

import "time"

const (
	pkgName = "internal/store/httpapi"

	// idprom images are served at <endpoint>/api/v1/ports/<port>/idprom
	idpromPathFmt = "/api/v1/ports/%s/idprom"

	contentTypeBinary = "application/octet-stream"

	// upper bound on a response body, well above one image
	maxBodyBytes = 4096

	retryWaitMin = 100 * time.Millisecond
	retryWaitMax = 2 * time.Second
)
