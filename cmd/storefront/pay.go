package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

func payCmd(configFile *string) *cobra.Command {
	var details domain.CustomerDetails
	var phoneNumber string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Check out the current cart and follow the payment until it settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if phoneNumber == "" {
				phoneNumber = details.Phone
			}
			if details.Phone == "" {
				details.Phone = phoneNumber
			}
			return runPay(cmd.Context(), cmd.OutOrStdout(), *configFile, details, phoneNumber)
		},
	}

	cmd.Flags().StringVarP(&phoneNumber, "phone", "p", "", "phone number to charge (07..., 7..., or 254...)")
	cmd.Flags().StringVar(&details.FirstName, "first-name", "", "customer first name")
	cmd.Flags().StringVar(&details.LastName, "last-name", "", "customer last name")
	cmd.Flags().StringVar(&details.Email, "email", "", "customer email")
	cmd.Flags().StringVar(&details.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&details.City, "city", "", "delivery city")
	cmd.Flags().StringVar(&details.Country, "country", domain.DefaultCountry, "delivery country")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func runPay(ctx context.Context, out io.Writer, configFile string, details domain.CustomerDetails, phoneNumber string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configFile, "console")
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	updates := make(chan domain.CheckoutSession, 16)
	done := make(chan struct{})

	opts := a.checkoutOptions()
	opts.OnChange = func(s domain.CheckoutSession) {
		select {
		case updates <- s:
		case <-done:
		}
	}

	cartSvc := cart.NewService(a.cartStore, a.logger)
	manager := checkout.NewManager(cartSvc, a.processor, a.recorder, opts, a.logger)

	session, err := manager.Start(ctx)
	if err != nil {
		close(done)
		return err
	}
	defer func() {
		close(done)
		_ = manager.Discard(session.ID)
	}()

	fmt.Fprintf(out, "Order total: %s (subtotal %s, shipping %s, tax %s)\n",
		session.Totals.Total.StringFixed(2),
		session.Totals.Subtotal.StringFixed(2),
		session.Totals.Shipping.StringFixed(2),
		session.Totals.Tax.StringFixed(2),
	)

	if _, err := manager.Submit(ctx, session.ID, details, phoneNumber); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Checkout abandoned.")
			return ctx.Err()

		case s := <-updates:
			printUpdate(out, s)
			switch s.State {
			case domain.PaymentStateSuccess:
				return nil
			case domain.PaymentStateError:
				return fmt.Errorf("payment not completed: %s", s.LastMessage)
			}
		}
	}
}

func printUpdate(out io.Writer, s domain.CheckoutSession) {
	switch s.State {
	case domain.PaymentStatePending:
		if s.PollAttempts == 0 {
			fmt.Fprintf(out, "Payment request sent to %s (checkout %s).\n", s.PhoneNormalized, s.CheckoutRequestID)
		}
		fmt.Fprintln(out, s.StatusMessage)
	case domain.PaymentStateSuccess:
		fmt.Fprintln(out, s.StatusMessage)
	case domain.PaymentStateError:
		fmt.Fprintf(out, "Error [%s]: %s\n", s.ErrorCode, s.LastMessage)
	}
}
