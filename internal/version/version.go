// Package version reports build information.
package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// set with -ldflags at build time
var (
	GitCommit  string
	GitBranch  string
	GitSummary string
	BuildDate  string
	AppVersion string
)

var buildInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "sffinfo_build_info",
		Help: "A metric with a constant '1' value labeled by version and commit from which sffinfo was built",
	},
	[]string{"version", "commit", "branch", "goversion"},
)

type Version struct {
	GitCommit  string `json:"git_commit"`
	GitBranch  string `json:"git_branch"`
	GitSummary string `json:"git_summary"`
	BuildDate  string `json:"build_date"`
	AppVersion string `json:"app_version"`
	GoVersion  string `json:"go_version"`
}

// Current returns the version of the running binary.
func Current() *Version {
	v := &Version{
		GitCommit:  GitCommit,
		GitBranch:  GitBranch,
		GitSummary: GitSummary,
		BuildDate:  BuildDate,
		AppVersion: AppVersion,
		GoVersion:  runtime.Version(),
	}

	if v.AppVersion == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v.AppVersion = info.Main.Version
		}
	}

	return v
}

// AsMap returns the version as logrus style fields.
func (v *Version) AsMap() (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal version")
	}

	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal version")
	}

	return m, nil
}

func (v *Version) AsLogFields() []any {
	return []any{
		"version", v.AppVersion,
		"commit", v.GitCommit,
		"branch", v.GitBranch,
		"buildDate", v.BuildDate,
		"goVersion", v.GoVersion,
	}
}

// ExportBuildInfoMetric sets the build info gauge.
func ExportBuildInfoMetric() {
	v := Current()
	buildInfo.WithLabelValues(v.AppVersion, v.GitCommit, v.GitBranch, v.GoVersion).Set(1)
}
