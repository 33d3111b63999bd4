package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir)
	require.NoError(t, err)

	_, err = New(filepath.Join(dir, "absent"))
	assert.ErrorIs(t, err, ErrDir)

	path := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err = New(path)
	assert.ErrorIs(t, err, ErrDir)
}

func TestIdpromByPort(t *testing.T) {
	dir := t.TempDir()
	want := make([]byte, 256)
	want[0] = 0x11
	require.NoError(t, os.WriteFile(filepath.Join(dir, "port1"), want, 0o600))

	s, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, model.SourceKindFile, s.Kind())

	got, err := s.IdpromByPort(context.Background(), "port1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.IdpromByPort(context.Background(), "port2")
	assert.ErrorIs(t, err, model.ErrModuleAbsent)

	for _, bad := range []string{"", ".", "..", "../port1", "a/b"} {
		_, err = s.IdpromByPort(context.Background(), bad)
		assert.ErrorIs(t, err, ErrPortName, bad)
	}
}

func TestIdpromByPortCanceled(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.IdpromByPort(ctx, "port1")
	assert.ErrorIs(t, err, context.Canceled)
}
