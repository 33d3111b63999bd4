package cmd

import (
	"context"
	"io"
	"os"

	"github.com/metal-toolbox/sffinfo/internal/configuration"
	"github.com/metal-toolbox/sffinfo/internal/inventory"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/internal/report"
	"github.com/spf13/cobra"
)

var inventoryPort string

// inventoryCmd represents the inventory command
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List the recorded transceivers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := configuration.Load(args)
		if err != nil {
			return err
		}

		format, err := report.ParseFormat(outputFormat)
		if err != nil {
			return err
		}

		db, err := inventory.Open(config.Inventory.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		return listInventory(cmd.Context(), os.Stdout, format, db, inventoryPort)
	},
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryPort, "port", "", "show every record of one port, newest first")

	rootCmd.AddCommand(inventoryCmd)
}

// listInventory renders the latest record of every port, or the history of
// port when set.
func listInventory(ctx context.Context, w io.Writer, format report.Format, db *inventory.DB, port string) error {
	var (
		records []*inventory.Record
		err     error
	)

	if port != "" {
		records, err = db.History(ctx, port)
	} else {
		records, err = db.Latest(ctx)
	}

	if err != nil {
		return err
	}

	transceivers := make([]*model.Transceiver, 0, len(records))

	for _, r := range records {
		info, err := r.Info()
		if err != nil {
			return err
		}

		transceivers = append(transceivers, &model.Transceiver{
			ID:        r.ID,
			Port:      r.Port,
			Source:    r.Source,
			ScannedAt: r.ScannedAt,
			Info:      info,
		})
	}

	return report.Transceivers(w, format, transceivers)
}
