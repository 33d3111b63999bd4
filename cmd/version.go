package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/metal-toolbox/sffinfo/internal/report"
	"github.com/metal-toolbox/sffinfo/internal/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build information",
	RunE: func(_ *cobra.Command, _ []string) error {
		format, err := report.ParseFormat(outputFormat)
		if err != nil {
			return err
		}

		return printVersion(os.Stdout, format, version.Current())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, format report.Format, v *version.Version) error {
	fields, err := v.AsMap()
	if err != nil {
		return err
	}

	switch format {
	case report.FormatJSON:
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode json")
		}

		_, err = fmt.Fprintln(w, string(b))

		return err
	case report.FormatYAML:
		b, err := yaml.Marshal(fields)
		if err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}

		_, err = w.Write(b)

		return err
	default:
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s: %v\n", k, fields[k]); err != nil {
				return err
			}
		}

		return nil
	}
}
