package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bumuk-library/leadctl/internal/followup"
)

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List leads whose follow-up is due",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mgr := followup.NewManager(st, cfg.Leads.Statuses, cfg.Leads.FollowUpDays)
		due, err := mgr.DueLeads(ctx)
		if err != nil {
			return err
		}

		if len(due) == 0 {
			fmt.Println("no follow-ups due")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DUE\tID\tNAME\tPHONE\tSTATUS")
		for _, l := range due {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				l.FollowUpAt.Format("2006-01-02"), l.ID, l.FullName, l.PhoneNumber, l.Status)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(followupsCmd)
}
