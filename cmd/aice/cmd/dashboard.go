package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the billing-cycle call summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		stats, err := a.dashboard.Stats(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		fmt.Printf("Calls this cycle: %d (%d inbound, %d outbound)\n",
			stats.TotalCallsThisCycle, stats.InboundCalls, stats.OutboundCalls)
		fmt.Printf("Plan: %s, %d/%d minutes used\n",
			stats.PlanName, stats.PlanMinutesUsed, stats.PlanMinutesLimit)
		fmt.Printf("Renews: %s\n", stats.RenewalDate)
		fmt.Printf("Avg call: %.1f min, success rate %.1f%%\n",
			stats.AverageCallDuration, stats.CallSuccessRate)
		return nil
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List call-center agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		agents, err := a.dashboard.Agents(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		rows := make([][]string, 0, len(agents))
		for _, agent := range agents {
			rows = append(rows, []string{agent.ID, agent.Name, agent.Email, agent.Status, agent.JoinedAt})
		}
		table([]string{"ID", "NAME", "EMAIL", "STATUS", "JOINED"}, rows)
		return nil
	},
}

var callsStatus string

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Show call history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		calls, err := a.dashboard.Calls(cmd.Context(), callsStatus)
		if err != nil {
			return sessionError(a, err)
		}
		rows := make([][]string, 0, len(calls))
		for _, c := range calls {
			rows = append(rows, []string{
				c.ID, c.Direction, c.Caller,
				strconv.Itoa(c.DurationSeconds) + "s", c.Status, c.StartedAt,
			})
		}
		table([]string{"ID", "DIR", "CALLER", "DURATION", "STATUS", "STARTED"}, rows)
		return nil
	},
}

func init() {
	callsCmd.Flags().StringVar(&callsStatus, "status", "", "Filter by call status")
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(callsCmd)
}
