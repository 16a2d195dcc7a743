package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/salesaice/aice-go/billing"
)

var paymentMethodsCmd = &cobra.Command{
	Use:     "payment-methods",
	Aliases: []string{"pm"},
	Short:   "Manage saved payment methods",
}

var pmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payment methods",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		methods, err := a.payments.List(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		rows := make([][]string, 0, len(methods))
		for _, pm := range methods {
			def := ""
			if pm.IsDefault {
				def = "default"
			}
			rows = append(rows, []string{pm.ID, pm.DisplayName, pm.Expires, def})
		}
		table([]string{"ID", "CARD", "EXPIRES", ""}, rows)
		return nil
	},
}

var (
	pmCardNumber  string
	pmCardExpiry  string
	pmCardCVC     string
	pmSetDefault  bool
	pmProviderURL string
)

var pmAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a payment method",
	Long: `Tokenizes the card with the payment provider and attaches the
resulting reference to your account. Raw card data never reaches the AICE
backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		expMonth, expYear, err := parseExpiry(pmCardExpiry)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		tokenizer := billing.NewHTTPTokenizer(pmProviderURL + "/provider/tokenize/")
		manager := billing.NewManager(a.api, tokenizer, billing.WithLogger(newLogger()))
		pm, err := manager.Add(cmd.Context(), billing.CardDetails{
			Number:   pmCardNumber,
			ExpMonth: expMonth,
			ExpYear:  expYear,
			CVC:      pmCardCVC,
		}, pmSetDefault)
		if err != nil {
			var tokErr *billing.TokenizeError
			if errors.As(err, &tokErr) {
				return fmt.Errorf("card rejected: %s", tokErr.Reason)
			}
			return sessionError(a, err)
		}
		fmt.Printf("Added %s (%s)\n", pm.DisplayName, pm.ID)
		return nil
	},
}

var pmSetDefaultCmd = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Set the default payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		if err := a.payments.SetDefault(cmd.Context(), args[0]); err != nil {
			return sessionError(a, err)
		}
		// Re-list: the server response is the source of truth for which
		// method holds the default flag now.
		methods, err := a.payments.List(cmd.Context())
		if err != nil {
			return sessionError(a, err)
		}
		for _, pm := range methods {
			if pm.IsDefault {
				fmt.Printf("Default payment method is now %s\n", pm.DisplayName)
			}
		}
		return nil
	},
}

var pmRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		// Populate the manager's snapshot so the remove-default guard can
		// reject locally without a network call.
		if _, err := a.payments.List(cmd.Context()); err != nil {
			return sessionError(a, err)
		}
		if err := a.payments.Remove(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, billing.ErrRemoveDefault) {
				return fmt.Errorf("that is your default payment method; set another default first")
			}
			return sessionError(a, err)
		}
		fmt.Println("Payment method removed")
		return nil
	},
}

func parseExpiry(s string) (month, year int, err error) {
	var m, y string
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			m, y = s[:i], s[i+1:]
			break
		}
	}
	if m == "" || y == "" {
		return 0, 0, fmt.Errorf("expiry must be MM/YYYY, got %q", s)
	}
	month, err = strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid expiry month %q", m)
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid expiry year %q", y)
	}
	return month, year, nil
}

func init() {
	pmAddCmd.Flags().StringVar(&pmCardNumber, "number", "", "Card number")
	pmAddCmd.Flags().StringVar(&pmCardExpiry, "expiry", "", "Card expiry as MM/YYYY")
	pmAddCmd.Flags().StringVar(&pmCardCVC, "cvc", "", "Card verification code")
	pmAddCmd.Flags().BoolVar(&pmSetDefault, "default", false, "Set as default payment method")
	pmAddCmd.Flags().StringVar(&pmProviderURL, "provider-url", envOr("AICE_PROVIDER_URL", "http://localhost:8087"), "Base URL of the card tokenization provider")
	pmAddCmd.MarkFlagRequired("number")
	pmAddCmd.MarkFlagRequired("expiry")
	pmAddCmd.MarkFlagRequired("cvc")

	paymentMethodsCmd.AddCommand(pmListCmd)
	paymentMethodsCmd.AddCommand(pmAddCmd)
	paymentMethodsCmd.AddCommand(pmSetDefaultCmd)
	paymentMethodsCmd.AddCommand(pmRemoveCmd)
	rootCmd.AddCommand(paymentMethodsCmd)
}
