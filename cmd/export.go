package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bumuk-library/leadctl/internal/export"
	"github.com/bumuk-library/leadctl/internal/store"
)

var (
	exportFormat string
	exportDir    string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored leads to a timestamped CSV or XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, store.Filter{Status: exportStatus})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		format := exportFormat
		if format == "" {
			format = cfg.Export.Format
		}
		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}

		path, err := export.Export(leads, dir, cfg.Export.Prefix, format, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("exported %d leads to %s\n", len(leads), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv or xlsx (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only export leads with this status")
	rootCmd.AddCommand(exportCmd)
}
