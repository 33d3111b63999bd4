package configuration

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jeremywohl/flatten"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	redacted = "<redacted>"

	defaultConcurrency       = 4
	defaultFileDir           = "/var/lib/sffinfo/idprom"
	defaultHTTPTimeout       = 10 * time.Second
	defaultHTTPRetries       = 3
	defaultInventoryPath     = "/var/lib/sffinfo/inventory.db"
	defaultMetricsEndpoint   = "0.0.0.0:9090"
	defaultProfilingEndpoint = "localhost:9091"
)

// Configuration holds application configuration read from a YAML or set by env variables.
// nolint:govet // prefer readability over field alignment optimization for this case.
type Configuration struct {
	// LogLevel is the app verbose logging level.
	// one of - debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	// LogFile, when set, receives the logrus output with rotation.
	LogFile string `mapstructure:"log_file"`

	// Concurrency is the number of ports decoded at once.
	Concurrency int `mapstructure:"concurrency"`

	// Verbose reports why a module is not supported.
	Verbose bool `mapstructure:"verbose"`

	// Ports lists the ports a scan reads.
	Ports []string `mapstructure:"ports"`

	// Source defines where idprom images are read from.
	Source *SourceOptions `mapstructure:"source"`

	Inventory *InventoryOptions `mapstructure:"inventory"`

	Metrics *MetricsOptions `mapstructure:"metrics"`

	EnableProfiling   bool   `mapstructure:"enable_profiling"`
	ProfilingEndpoint string `mapstructure:"profiling_endpoint"`
}

// SourceOptions selects and configures the idprom source.
type SourceOptions struct {
	Kind string             `mapstructure:"kind"`
	File *FileSourceOptions `mapstructure:"file"`
	HTTP *HTTPSourceOptions `mapstructure:"http"`
}

// FileSourceOptions reads <dir>/<port> files.
type FileSourceOptions struct {
	Dir string `mapstructure:"dir"`
}

// HTTPSourceOptions defines configuration for the device API client.
type HTTPSourceOptions struct {
	Endpoint             string        `mapstructure:"endpoint"`
	Timeout              time.Duration `mapstructure:"timeout"`
	Retries              int           `mapstructure:"retries"`
	OidcIssuerEndpoint   string        `mapstructure:"oidc_issuer_endpoint"`
	OidcAudienceEndpoint string        `mapstructure:"oidc_audience_endpoint"`
	OidcClientSecret     string        `mapstructure:"oidc_client_secret"`
	OidcClientID         string        `mapstructure:"oidc_client_id"`
	OidcClientScopes     []string      `mapstructure:"oidc_client_scopes"`
	DisableOAuth         bool          `mapstructure:"disable_oauth"`
}

type InventoryOptions struct {
	Path string `mapstructure:"path"`
}

type MetricsOptions struct {
	Endpoint string `mapstructure:"endpoint"`
}

// New creates a configuration with defaults applied.
func New() *Configuration {
	config := &Configuration{
		LogLevel:          "info",
		Concurrency:       defaultConcurrency,
		ProfilingEndpoint: defaultProfilingEndpoint,
	}

	// these are initialized here so viper can read in configuration from env vars
	// once https://github.com/spf13/viper/pull/1429 is merged, this can go.
	config.Source = &SourceOptions{
		Kind: string(model.SourceKindFile),
		File: &FileSourceOptions{Dir: defaultFileDir},
		HTTP: &HTTPSourceOptions{Timeout: defaultHTTPTimeout, Retries: defaultHTTPRetries},
	}
	config.Inventory = &InventoryOptions{Path: defaultInventoryPath}
	config.Metrics = &MetricsOptions{Endpoint: defaultMetricsEndpoint}

	return config
}

// Redacted returns a deep copy with secrets masked.
func (c *Configuration) Redacted() *Configuration {
	cp, err := copystructure.Copy(c)
	if err != nil {
		return New()
	}

	rc, ok := cp.(*Configuration)
	if !ok {
		return New()
	}

	if rc.Source != nil && rc.Source.HTTP != nil && rc.Source.HTTP.OidcClientSecret != "" {
		rc.Source.HTTP.OidcClientSecret = redacted
	}

	return rc
}

func (c *Configuration) AsLogFields() []any {
	rc := c.Redacted()

	return []any{
		"logLevel", rc.LogLevel,
		"logFile", rc.LogFile,
		"concurrency", rc.Concurrency,
		"verbose", rc.Verbose,
		"ports", rc.Ports,
		"source", rc.Source,
		"inventoryPath", rc.Inventory.Path,
		"metricsEndpoint", rc.Metrics.Endpoint,
		"enableProfiling", rc.EnableProfiling,
	}
}

func (c *Configuration) LoadArgs(args *model.Args) {
	if args.LogLevel != "" {
		c.LogLevel = args.LogLevel
	}

	c.EnableProfiling = c.EnableProfiling || args.EnableProfiling
}

// Load the application configuration
// Reads in the configFile when available and overrides from environment variables.
func Load(args *model.Args) (*Configuration, error) {
	viperConfig := viper.New()
	viperConfig.SetConfigType("yaml")
	viperConfig.SetEnvPrefix(model.AppName)
	viperConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperConfig.AutomaticEnv()

	if args.ConfigFile != "" {
		fh, err := os.Open(args.ConfigFile)
		if err != nil {
			return nil, errors.Wrap(model.ErrConfig, err.Error())
		}
		defer fh.Close()

		if err = viperConfig.ReadConfig(fh); err != nil {
			return nil, errors.Wrap(model.ErrConfig, "ReadConfig error: "+err.Error())
		}
	}

	config := New()

	if err := config.envBindVars(viperConfig); err != nil {
		return nil, errors.Wrap(model.ErrConfig, "env var bind error: "+err.Error())
	}

	if err := viperConfig.Unmarshal(config); err != nil {
		return nil, errors.Wrap(model.ErrConfig, "Unmarshal error: "+err.Error())
	}

	config.envVarAppOverrides(viperConfig)
	config.LoadArgs(args)

	if err := config.envVarSourceOverrides(viperConfig); err != nil {
		return nil, errors.Wrap(model.ErrConfig, "source env overrides error: "+err.Error())
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(model.ErrConfig, err.Error())
	}

	return config, nil
}

func (c *Configuration) envVarAppOverrides(viperConfig *viper.Viper) {
	if logLevel := viperConfig.GetString("log.level"); logLevel != "" {
		c.LogLevel = logLevel
	}

	if ports := viperConfig.GetStringSlice("ports"); len(ports) > 0 {
		c.Ports = ports
	}

	if path := viperConfig.GetString("inventory.path"); path != "" {
		c.Inventory.Path = path
	}

	if endpoint := viperConfig.GetString("metrics.endpoint"); endpoint != "" {
		c.Metrics.Endpoint = endpoint
	}
}

// envBindVars binds environment variables to the struct
// without a configuration file being unmarshalled,
// this is a workaround for a viper bug,
//
// This can be replaced by the solution in https://github.com/spf13/viper/pull/1429
// once that PR is merged.
func (c *Configuration) envBindVars(viperConfig *viper.Viper) error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(c, &envKeysMap); err != nil {
		return err
	}

	// Flatten nested conf map
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten configuration")
	}

	for k := range flat {
		if err := viperConfig.BindEnv(k); err != nil {
			return errors.Wrap(model.ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}

// nolint:gocyclo // parameter validation is cyclomatic
func (c *Configuration) envVarSourceOverrides(viperConfig *viper.Viper) error {
	if kind := viperConfig.GetString("source.kind"); kind != "" {
		c.Source.Kind = kind
	}

	switch model.SourceKind(c.Source.Kind) {
	case model.SourceKindDryRun:
		return nil
	case model.SourceKindFile:
		if dir := viperConfig.GetString("source.file.dir"); dir != "" {
			c.Source.File.Dir = dir
		}

		if c.Source.File.Dir == "" {
			return errors.New("source.file.dir not defined")
		}

		return nil
	case model.SourceKindHTTP:
		return c.envVarHTTPOverrides(viperConfig)
	default:
		return errors.Wrap(model.ErrInvalidSource, c.Source.Kind)
	}
}

// nolint:gocyclo // parameter validation is cyclomatic
func (c *Configuration) envVarHTTPOverrides(viperConfig *viper.Viper) error {
	opts := c.Source.HTTP

	if viperConfig.GetString("source.http.endpoint") != "" {
		opts.Endpoint = viperConfig.GetString("source.http.endpoint")
	}

	if opts.Endpoint == "" {
		return errors.New("source.http.endpoint not defined")
	}

	// Validate endpoint
	if _, err := url.ParseRequestURI(opts.Endpoint); err != nil {
		return errors.New("source.http.endpoint URL error: " + err.Error())
	}

	if viperConfig.GetDuration("source.http.timeout") != 0 {
		opts.Timeout = viperConfig.GetDuration("source.http.timeout")
	}

	if viperConfig.GetString("source.http.disable.oauth") != "" {
		opts.DisableOAuth = viperConfig.GetBool("source.http.disable.oauth")
	}

	if opts.DisableOAuth {
		return nil
	}

	if viperConfig.GetString("source.http.oidc.issuer.endpoint") != "" {
		opts.OidcIssuerEndpoint = viperConfig.GetString("source.http.oidc.issuer.endpoint")
	}

	if opts.OidcIssuerEndpoint == "" {
		return errors.New("source.http oidc.issuer.endpoint not defined")
	}

	if viperConfig.GetString("source.http.oidc.audience.endpoint") != "" {
		opts.OidcAudienceEndpoint = viperConfig.GetString("source.http.oidc.audience.endpoint")
	}

	if opts.OidcAudienceEndpoint == "" {
		return errors.New("source.http oidc.audience.endpoint not defined")
	}

	if viperConfig.GetString("source.http.oidc.client.secret") != "" {
		opts.OidcClientSecret = viperConfig.GetString("source.http.oidc.client.secret")
	}

	if opts.OidcClientSecret == "" {
		return errors.New("source.http oidc.client.secret not defined")
	}

	if viperConfig.GetString("source.http.oidc.client.id") != "" {
		opts.OidcClientID = viperConfig.GetString("source.http.oidc.client.id")
	}

	if opts.OidcClientID == "" {
		return errors.New("source.http oidc.client.id not defined")
	}

	if viperConfig.GetString("source.http.oidc.client.scopes") != "" {
		opts.OidcClientScopes = viperConfig.GetStringSlice("source.http.oidc.client.scopes")
	}

	if len(opts.OidcClientScopes) == 0 {
		return errors.New("source.http oidc.client.scopes not defined")
	}

	return nil
}

func (c *Configuration) validate() error {
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	if c.Source.HTTP.Retries < 0 {
		return errors.New("source.http.retries must not be negative")
	}

	seen := make(map[string]bool, len(c.Ports))
	for _, port := range c.Ports {
		if port == "" {
			return errors.New("empty port name")
		}

		if seen[port] {
			return errors.Errorf("duplicate port %q", port)
		}

		seen[port] = true
	}

	return nil
}
