// Package file reads idprom images captured to files, one per port.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/pkg/errors"
)

// Store reads <dir>/<port>.
type Store struct {
	dir string
}

// New returns a Store for dir, which must be an existing directory.
func New(dir string) (*Store, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(ErrDir, err.Error())
	}

	if !st.IsDir() {
		return nil, errors.Wrap(ErrDir, dir+" is not a directory")
	}

	return &Store{dir: dir}, nil
}

func (s *Store) Kind() model.SourceKind {
	return model.SourceKindFile
}

// IdpromByPort reads the image file of port. A missing file is an empty port.
func (s *Store) IdpromByPort(ctx context.Context, port string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if port == "" || port == "." || port == ".." || filepath.Base(port) != port {
		return nil, errors.Wrapf(ErrPortName, "%q", port)
	}

	return ReadFile(filepath.Join(s.dir, port))
}

// ReadFile reads one image file.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(model.ErrModuleAbsent, path)
		}

		return nil, errors.Wrap(ErrRead, err.Error())
	}

	return b, nil
}
