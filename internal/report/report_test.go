package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// 1000BASE-T SFP with valid checksums
func sfp1000BaseT(t *testing.T) *sff.Info {
	t.Helper()

	var p sff.Idprom

	p[0] = 0x03
	p[6] = 0x08
	copy(p[20:36], "ACME CORP       ")
	copy(p[40:56], "SFP-1G-T        ")
	copy(p[68:84], "SN0001          ")
	p.UpdateChecksums()

	info, err := sff.NewInfo(p[:])
	require.NoError(t, err)
	require.True(t, info.Supported)

	return info
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"", "text", "TEXT"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, FormatText, f)
	}

	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFromInfo(t *testing.T) {
	m := FromInfo(sfp1000BaseT(t))

	assert.Equal(t, "ACME CORP", m.Vendor)
	assert.Equal(t, "SFP-1G-T", m.Model)
	assert.Equal(t, "SN0001", m.Serial)
	assert.Equal(t, "SFP", m.SFPType)
	assert.Equal(t, "1G_BASE_T", m.ModuleType)
	assert.Equal(t, "COPPER", m.MediaType)
	assert.Equal(t, []string{"F_1G"}, m.Caps)
	assert.Equal(t, "N/A", m.Length)
	assert.Empty(t, m.Problems)
}

func TestFromInfoUnsupported(t *testing.T) {
	info, err := sff.NewInfo(make([]byte, sff.IdpromSize))
	require.NoError(t, err)

	m := FromInfo(info)
	assert.False(t, m.Supported)
	assert.Nil(t, m.Caps)
	assert.Contains(t, m.Problems, "unrecognized identifier 0x00")
}

func TestRender(t *testing.T) {
	tr := &model.Transceiver{
		ID:        uuid.MustParse("6f8c1b5e-3a2d-4f7e-9c1a-0b2d3e4f5a6b"),
		Port:      "swp7",
		Source:    model.SourceKindFile,
		ScannedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Info:      sfp1000BaseT(t),
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Transceivers(&buf, FormatText, []*model.Transceiver{tr}))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "PORT"))
		assert.Contains(t, lines[1], "swp7")
		assert.Contains(t, lines[1], "1G_BASE_T")
		assert.True(t, strings.HasSuffix(lines[1], "true"))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Transceivers(&buf, FormatJSON, []*model.Transceiver{tr}))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "swp7", got[0]["port"])
		assert.Equal(t, "2024-05-01T12:00:00Z", got[0]["scanned_at"])
		assert.Equal(t, "6f8c1b5e-3a2d-4f7e-9c1a-0b2d3e4f5a6b", got[0]["id"])
		assert.NotContains(t, got[0], "problems")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Transceivers(&buf, FormatYAML, []*model.Transceiver{tr}))

		var got []Module
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "SFP-1G-T", got[0].Model)
		assert.Equal(t, "file", got[0].Source)
	})

	t.Run("nil info", func(t *testing.T) {
		var buf bytes.Buffer
		empty := &model.Transceiver{Port: "swp8"}
		require.NoError(t, Transceivers(&buf, FormatText, []*model.Transceiver{empty}))
		assert.Contains(t, buf.String(), "INVALID")
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorIs(t, Render(&bytes.Buffer{}, Format("xml"), nil), ErrFormat)
	})
}

func TestRenderTextDetails(t *testing.T) {
	bad := sfp1000BaseT(t)
	bad.Eeprom[1] ^= 0x80

	info, err := sff.NewInfo(bad.Eeprom[:])
	require.NoError(t, err)
	require.False(t, info.Supported)

	good := FromInfo(sfp1000BaseT(t))
	good.Port = "swp1"

	unsupported := FromInfo(info)
	unsupported.Port = "swp2"

	failed := Failed("swp3", errors.New("read timeout"))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, []*Module{good, unsupported, failed}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	assert.Contains(t, lines[0], "CAPS")
	assert.Contains(t, lines[0], "REV")
	assert.Contains(t, lines[1], "F_1G")
	assert.True(t, strings.HasPrefix(lines[2], "swp2"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[3]), "problem: base checksum mismatch"))
	assert.True(t, strings.HasPrefix(lines[4], "swp3"))
	assert.Contains(t, lines[4], "NONE")
	assert.Equal(t, "error: read timeout", strings.TrimSpace(lines[5]))
}
