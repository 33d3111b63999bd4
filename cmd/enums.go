package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	enumLookup string
	enumPrefix bool

	errUnknownTaxonomy = errors.New("unknown taxonomy")
)

type enumRow struct {
	Name  string
	Value int
	Desc  string
}

type taxonomy struct {
	rows   func() []enumRow
	lookup func(name string, substr bool) (enumRow, error)
}

func rowsOf[T interface {
	~int
	String() string
	Desc() string
}](values []T) []enumRow {
	rows := make([]enumRow, 0, len(values))
	for _, v := range values {
		rows = append(rows, enumRow{Name: v.String(), Value: int(v), Desc: v.Desc()})
	}

	return rows
}

func lookupOf[T interface {
	~int
	String() string
	Desc() string
}](parse func(string, bool) (T, error)) func(string, bool) (enumRow, error) {
	return func(name string, substr bool) (enumRow, error) {
		v, err := parse(name, substr)
		if err != nil {
			return enumRow{}, err
		}

		return enumRow{Name: v.String(), Value: int(v), Desc: v.Desc()}, nil
	}
}

var taxonomies = map[string]taxonomy{
	"sfp-type": {
		rows:   func() []enumRow { return rowsOf(sff.SFPTypeValues()) },
		lookup: lookupOf(sff.ParseSFPType),
	},
	"module-type": {
		rows:   func() []enumRow { return rowsOf(sff.ModuleTypeValues()) },
		lookup: lookupOf(sff.ParseModuleType),
	},
	"media-type": {
		rows:   func() []enumRow { return rowsOf(sff.MediaTypeValues()) },
		lookup: lookupOf(sff.ParseMediaType),
	},
	"caps": {
		rows:   func() []enumRow { return rowsOf(sff.ModuleCapsValues()) },
		lookup: lookupOf(sff.ParseModuleCaps),
	},
}

func taxonomyNames() []string {
	names := make([]string, 0, len(taxonomies))
	for name := range taxonomies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// enumsCmd represents the enums command
var enumsCmd = &cobra.Command{
	Use:       "enums [sfp-type|module-type|media-type|caps]",
	Short:     "List the decoder taxonomies or look up a name",
	Args:      cobra.ExactArgs(1),
	ValidArgs: taxonomyNames(),
	RunE: func(_ *cobra.Command, argv []string) error {
		return showEnums(os.Stdout, argv[0], enumLookup, enumPrefix)
	},
}

func init() {
	enumsCmd.Flags().StringVar(&enumLookup, "lookup", "", "resolve a single name")
	enumsCmd.Flags().BoolVar(&enumPrefix, "prefix", false, "with --lookup, accept the first name starting with the given text")

	rootCmd.AddCommand(enumsCmd)
}

func showEnums(w io.Writer, name, lookup string, prefix bool) error {
	tax, ok := taxonomies[name]
	if !ok {
		return errors.Wrapf(errUnknownTaxonomy, "%q, one of %v", name, taxonomyNames())
	}

	rows := tax.rows()

	if lookup != "" {
		row, err := tax.lookup(lookup, prefix)
		if err != nil {
			return err
		}

		rows = []enumRow{row}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tDESCRIPTION")

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Name, r.Value, r.Desc)
	}

	return tw.Flush()
}
