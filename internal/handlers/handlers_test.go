package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/metal-toolbox/rivets/condition"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/internal/store/dryrun"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu    sync.Mutex
	saved map[string]*model.Transceiver
}

func (r *fakeRecorder) Save(_ context.Context, t *model.Transceiver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saved == nil {
		r.saved = make(map[string]*model.Transceiver)
	}

	r.saved[t.Port] = t

	return nil
}

type failingSource struct{}

var errUnreachable = errors.New("device unreachable")

func (failingSource) IdpromByPort(_ context.Context, _ string) ([]byte, error) {
	return nil, errUnreachable
}

func (failingSource) Kind() model.SourceKind {
	return model.SourceKindHTTP
}

func newDryRun(t *testing.T, plugs map[string]string) *dryrun.Store {
	t.Helper()

	store := dryrun.New()
	for port, name := range plugs {
		require.NoError(t, store.Plug(port, name))
	}

	return store
}

func TestScanNoPorts(t *testing.T) {
	h := NewHandlerFactory(dryrun.New())

	_, err := h.Scan(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrNoPorts)
}

func TestScan(t *testing.T) {
	store := newDryRun(t, map[string]string{
		"swp3": "qsfp28-sr4",
		"swp1": "sfp-plus-dac",
		"swp2": "empty",
		"swp4": "sfp-bad-checksum",
	})

	logger, _ := test.NewNullLogger()
	recorder := &fakeRecorder{}

	h := NewHandlerFactory(store,
		WithRecorder(recorder),
		WithConcurrency(2),
		WithVerbose(true),
		WithLogger(logger),
	)

	results, err := h.Scan(context.Background(), []string{"swp4", "swp3", "swp2", "swp1"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, port := range []string{"swp1", "swp2", "swp3", "swp4"} {
		assert.Equal(t, port, results[i].Port)
		assert.NoError(t, results[i].Err)
	}

	assert.Nil(t, results[1].Transceiver)
	assert.True(t, results[2].Transceiver.Info.Supported)
	assert.False(t, results[3].Transceiver.Info.Supported)

	assert.Len(t, recorder.saved, 3)
	assert.NotContains(t, recorder.saved, "swp2")

	assert.NoError(t, Failures(results))
}

func TestScanPortFailure(t *testing.T) {
	h := NewHandlerFactory(failingSource{}, WithConcurrency(0))
	assert.Equal(t, 1, h.concurrency)

	results, err := h.Scan(context.Background(), []string{"swp1", "swp2"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, errUnreachable)
		assert.Nil(t, r.Transceiver)
		assert.Equal(t, string(condition.Failed), r.Status.Status)
	}

	err = Failures(results)
	assert.ErrorIs(t, err, model.ErrScanFailed)
	assert.Contains(t, err.Error(), "2 of 2 ports failed")
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHandlerFactory(dryrun.New())

	_, err := h.Scan(ctx, []string{"swp1"})
	assert.ErrorIs(t, err, context.Canceled)
}
