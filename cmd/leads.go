package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bumuk-library/leadctl/internal/followup"
	"github.com/bumuk-library/leadctl/internal/model"
	"github.com/bumuk-library/leadctl/internal/store"
)

var (
	leadsStatus   string
	leadsPriority string
	leadsLimit    int
	statusNote    string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, highest score first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, store.Filter{
			Status:   leadsStatus,
			Priority: model.Priority(leadsPriority),
			Limit:    leadsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL\tSCORE\tPRIORITY\tSTATUS")
		for _, l := range leads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				l.ID, l.FullName, l.PhoneNumber, l.Email, l.Score, l.Priority, l.Status)
		}
		return w.Flush()
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one lead in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		l, err := st.GetLead(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get lead %s", args[0])
		}

		fmt.Printf("%s (%s)\n", l.FullName, l.ID)
		fmt.Printf("  phone: %s  email: %s  city: %s\n", l.PhoneNumber, l.Email, l.City)
		fmt.Printf("  score: %d  priority: %s  status: %s\n", l.Score, l.Priority, l.Status)
		fmt.Printf("  source: %s  follow-ups: %d\n", l.SourceSheet, l.FollowUpCount)
		if l.FollowUpAt != nil {
			fmt.Printf("  next follow-up: %s\n", l.FollowUpAt.Format("2006-01-02"))
		}
		if l.Enrichment != nil {
			fmt.Printf("  segment: %s  potential: %s\n", l.Enrichment.CustomerSegment, l.Enrichment.PotentialValue)
			fmt.Printf("  strategy: %s\n", l.Enrichment.EngagementStrategy)
		}
		if l.StatusNotes != "" {
			fmt.Printf("notes:\n%s\n", l.StatusNotes)
		}
		return nil
	},
}

var leadsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Update a lead's status and schedule its next follow-up",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mgr := followup.NewManager(st, cfg.Leads.Statuses, cfg.Leads.FollowUpDays)
		lead, err := mgr.UpdateStatus(ctx, args[0], args[1], statusNote)
		if err != nil {
			return err
		}

		fmt.Printf("%s -> %s\n", lead.FullName, lead.Status)
		if lead.FollowUpAt != nil {
			fmt.Printf("next follow-up: %s\n", lead.FollowUpAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by status")
	leadsListCmd.Flags().StringVar(&leadsPriority, "priority", "", "filter by priority: High, Medium, or Low")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "maximum number of leads to list")
	leadsStatusCmd.Flags().StringVar(&statusNote, "note", "", "note to append to the lead's timeline")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsStatusCmd)
	rootCmd.AddCommand(leadsCmd)
}
