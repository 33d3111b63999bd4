// Package httpapi reads idprom images from a device API over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/metal-toolbox/sffinfo/internal/configuration"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2/clientcredentials"
)

// Store is the HTTP idprom source.
type Store struct {
	client   *retryablehttp.Client
	endpoint string
}

// New returns a Store for cfg. Unless OAuth is disabled, requests carry a
// client credentials token from the configured OIDC issuer.
func New(ctx context.Context, cfg *configuration.HTTPSourceOptions) (*Store, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.Wrap(ErrHTTPSourceConfig, "endpoint not defined")
	}

	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, errors.Wrap(ErrHTTPSourceConfig, err.Error())
	}

	var transport http.RoundTripper = http.DefaultTransport

	if !cfg.DisableOAuth {
		oauthTransport, err := newOAuthTransport(ctx, cfg)
		if err != nil {
			return nil, err
		}

		transport = oauthTransport
	}

	return &Store{
		client:   newRetryableClient(transport, cfg.Timeout, cfg.Retries),
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

func newOAuthTransport(ctx context.Context, cfg *configuration.HTTPSourceOptions) (http.RoundTripper, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OidcIssuerEndpoint)
	if err != nil {
		return nil, errors.Wrap(ErrOIDCProvider, err.Error())
	}

	oauthConfig := clientcredentials.Config{
		ClientID:       cfg.OidcClientID,
		ClientSecret:   cfg.OidcClientSecret,
		TokenURL:       provider.Endpoint().TokenURL,
		Scopes:         cfg.OidcClientScopes,
		EndpointParams: url.Values{"audience": []string{cfg.OidcAudienceEndpoint}},
	}

	return oauthConfig.Client(ctx).Transport, nil
}

// newRetryableClient wraps transport with tracing and retries.
func newRetryableClient(transport http.RoundTripper, timeout time.Duration, retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient.Transport = otelhttp.NewTransport(transport)
	client.HTTPClient.Timeout = timeout
	client.RetryMax = retries
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = slog.Default()

	return client
}

func (s *Store) Kind() model.SourceKind {
	return model.SourceKindHTTP
}

// IdpromByPort fetches the image of port. 404 and 204 mean the port is empty.
func (s *Store) IdpromByPort(ctx context.Context, port string) ([]byte, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "httpapi.IdpromByPort")
	defer span.End()

	span.SetAttributes(attribute.String("port", port))

	b, err := s.fetch(ctx, port)
	if err != nil && !errors.Is(err, model.ErrModuleAbsent) {
		span.SetStatus(codes.Error, err.Error())
	}

	return b, err
}

func (s *Store) fetch(ctx context.Context, port string) ([]byte, error) {
	endpoint := s.endpoint + fmt.Sprintf(idpromPathFmt, url.PathEscape(port))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(ErrRequest, err.Error())
	}

	req.Header.Set("Accept", contentTypeBinary)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrRequest, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, errors.Wrap(model.ErrModuleAbsent, port)
	default:
		return nil, errors.Wrapf(ErrUnexpectedStatus, "port %s: %s", port, resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(ErrRequest, err.Error())
	}

	return b, nil
}
