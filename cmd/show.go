package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/metal-toolbox/sffinfo/internal/report"
	"github.com/metal-toolbox/sffinfo/internal/store/file"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var showVerbose bool

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <file>...",
	Short: "Decode idprom image files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, argv []string) error {
		format, err := report.ParseFormat(outputFormat)
		if err != nil {
			return err
		}

		return showFiles(os.Stdout, format, argv, showVerbose)
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showVerbose, "verbose", "v", false, "report why a module is not supported")

	rootCmd.AddCommand(showCmd)
}

// showFiles decodes every path and renders the modules, in argument order.
// A file that cannot be read or decoded fails the command.
func showFiles(w io.Writer, format report.Format, paths []string, verbose bool) error {
	modules := make([]*report.Module, 0, len(paths))

	for _, path := range paths {
		b, err := file.ReadFile(path)
		if err != nil {
			return err
		}

		info, err := sff.NewInfo(b)
		if err != nil {
			return errors.Wrap(err, path)
		}

		if !info.Valid(verbose) {
			slog.Debug("Module not supported", "path", path, "problems", info.Problems())
		}

		m := report.FromInfo(info)
		m.Port = path
		modules = append(modules, m)
	}

	return report.Render(w, format, modules)
}
