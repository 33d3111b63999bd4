// Package report renders decoded transceivers.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat resolves a format name, text when empty.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.Wrap(ErrFormat, name)
	}
}

// Module is the printable view of one decoded module.
// nolint:govet // prefer to keep field ordering as is
type Module struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Port      string `json:"port,omitempty" yaml:"port,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	ScannedAt string `json:"scanned_at,omitempty" yaml:"scanned_at,omitempty"`

	Vendor     string   `json:"vendor" yaml:"vendor"`
	Model      string   `json:"model" yaml:"model"`
	Serial     string   `json:"serial" yaml:"serial"`
	Revision   string   `json:"revision" yaml:"revision"`
	SFPType    string   `json:"sfp_type" yaml:"sfp_type"`
	ModuleType string   `json:"module_type" yaml:"module_type"`
	MediaType  string   `json:"media_type" yaml:"media_type"`
	Caps       []string `json:"caps" yaml:"caps"`
	Length     string   `json:"length" yaml:"length"`
	Supported  bool     `json:"supported" yaml:"supported"`
	Problems   []string `json:"problems,omitempty" yaml:"problems,omitempty"`

	// Error is set when the port could not be read or decoded at all.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromInfo builds the view of info.
func FromInfo(info *sff.Info) *Module {
	var caps []string
	if info.Caps != 0 {
		caps = strings.Split(info.Caps.String(), "|")
	}

	m := &Module{
		Vendor:     info.Vendor,
		Model:      info.Model,
		Serial:     info.Serial,
		Revision:   info.Revision,
		SFPType:    info.SFPType.String(),
		ModuleType: info.ModuleType.String(),
		MediaType:  info.MediaType.String(),
		Caps:       caps,
		Length:     info.LengthDesc,
		Supported:  info.Supported,
	}

	if !info.Supported {
		m.Problems = info.Problems()
	}

	return m
}

// Failed builds the view of a port whose image could not be read or decoded.
func Failed(port string, err error) *Module {
	m := FromInfo(sff.Invalidate())
	m.Port = port
	m.Problems = nil
	m.Error = err.Error()

	return m
}

// FromTransceiver builds the view of t, including where it was read.
func FromTransceiver(t *model.Transceiver) *Module {
	info := t.Info
	if info == nil {
		info = sff.Invalidate()
	}

	m := FromInfo(info)
	m.ID = t.ID.String()
	m.Port = t.Port
	m.Source = string(t.Source)
	m.ScannedAt = t.ScannedAt.Format(time.RFC3339)

	return m
}

// Render writes modules to w in format.
func Render(w io.Writer, format Format, modules []*Module) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(modules); err != nil {
			return errors.Wrap(err, "failed to encode json")
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(modules); err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}

		return enc.Close()
	case FormatText, "":
		return renderText(w, modules)
	default:
		return errors.Wrap(ErrFormat, string(format))
	}
}

func cell(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

// renderText writes an aligned table, one row per module, each unsupported
// row followed by its problems.
func renderText(w io.Writer, modules []*Module) error {
	var table bytes.Buffer

	tw := tabwriter.NewWriter(&table, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PORT\tVENDOR\tMODEL\tSERIAL\tREV\tTYPE\tMODULE\tMEDIA\tCAPS\tLENGTH\tSUPPORTED")

	for _, m := range modules {
		caps := "NONE"
		if len(m.Caps) > 0 {
			caps = strings.Join(m.Caps, "|")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			cell(m.Port), cell(m.Vendor), cell(m.Model), cell(m.Serial), cell(m.Revision),
			m.SFPType, m.ModuleType, m.MediaType, caps, m.Length, m.Supported)
	}

	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	rows := strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n")

	var out strings.Builder

	out.WriteString(rows[0] + "\n")

	for i, m := range modules {
		out.WriteString(rows[i+1] + "\n")

		if m.Error != "" {
			out.WriteString("    error: " + m.Error + "\n")
		}

		for _, p := range m.Problems {
			out.WriteString("    problem: " + p + "\n")
		}
	}

	if _, err := io.WriteString(w, out.String()); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	return nil
}

// Transceivers renders t to w in format.
func Transceivers(w io.Writer, format Format, t []*model.Transceiver) error {
	modules := make([]*Module, 0, len(t))
	for _, tr := range t {
		modules = append(modules, FromTransceiver(tr))
	}

	return Render(w, format, modules)
}
