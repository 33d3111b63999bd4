package store

import (
	"context"

	"github.com/metal-toolbox/sffinfo/internal/configuration"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/internal/store/dryrun"
	"github.com/metal-toolbox/sffinfo/internal/store/file"
	"github.com/metal-toolbox/sffinfo/internal/store/httpapi"
	"github.com/pkg/errors"
)

// Repository reads idprom images. An empty port returns model.ErrModuleAbsent.
type Repository interface {
	// IdpromByPort returns the complete idprom image of the module in port.
	IdpromByPort(ctx context.Context, port string) ([]byte, error)

	// Kind names the source the images come from.
	Kind() model.SourceKind
}

func NewRepository(ctx context.Context, config *configuration.Configuration) (Repository, error) {
	switch model.SourceKind(config.Source.Kind) {
	case model.SourceKindFile:
		return file.New(config.Source.File.Dir)
	case model.SourceKindHTTP:
		return httpapi.New(ctx, config.Source.HTTP)
	case model.SourceKindDryRun:
		return dryrun.New(), nil
	default:
		return nil, errors.Wrap(model.ErrInvalidSource, config.Source.Kind)
	}
}
