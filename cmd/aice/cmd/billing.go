package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List billing invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		invoices, err := a.billing.Invoices(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		rows := make([][]string, 0, len(invoices))
		for _, inv := range invoices {
			rows = append(rows, []string{inv.ID, inv.Date, fmt.Sprintf("$%.2f", inv.Amount), inv.Status})
		}
		table([]string{"INVOICE", "DATE", "AMOUNT", "STATUS"}, rows)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the current subscription plan and payment method",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		plan, err := a.billing.CurrentPlan(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		fmt.Printf("Plan: %s ($%.2f/mo), next billing %s\n", plan.Name, plan.PriceMonthly, plan.NextBilling)

		pm, err := a.billing.DefaultPaymentMethod(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		if pm == nil {
			fmt.Println("No payment method on file")
		} else {
			fmt.Printf("Charged to %s (expires %s)\n", pm.DisplayName, pm.Expires)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(planCmd)
}
