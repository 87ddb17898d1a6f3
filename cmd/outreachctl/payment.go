package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

func paymentCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payments",
	}

	var (
		name    string
		email   string
		amount  string
		method  string
		program string
		decline float64
		seed    uint64
	)

	process := &cobra.Command{
		Use:     "process",
		Short:   "Authorize and record one payment against the simulated gateway",
		Example: `  outreachctl payment process --name "Alex Kim" --email alex@example.com --amount 3500 --method "Credit Card"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := env.engine()
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return err
			}

			gateway := billing.NewSimulatedGateway(decline)
			if seed != 0 {
				gateway = billing.NewSeededGateway(decline, seed)
			}
			uc := usecase.NewProcessPaymentUseCase(memstore.NewPaymentRepository(), gateway, engine, nil)
			p, err := uc.Execute(context.Background(), usecase.ProcessPaymentInput{
				PayerName:  name,
				PayerEmail: email,
				Program:    program,
				Amount:     value,
				Method:     method,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	process.Flags().StringVar(&name, "name", "", "payer name")
	process.Flags().StringVar(&email, "email", "", "payer email")
	process.Flags().StringVar(&amount, "amount", "0", "amount in dollars")
	process.Flags().StringVar(&method, "method", "Credit Card", "Credit Card, Affirm, Klarna, Bank Transfer or County Sponsorship")
	process.Flags().StringVar(&program, "program", "", "program key")
	process.Flags().Float64Var(&decline, "decline", billing.DefaultDeclineProbability, "decline probability")
	process.Flags().Uint64Var(&seed, "seed", 0, "deterministic gateway seed (0 = random)")

	var (
		planProgram string
		planPrice   string
		planKind    string
		checkout    string
	)
	plansUC := func() (*usecase.PaymentPlansUseCase, decimal.Decimal, error) {
		engine, err := env.engine()
		if err != nil {
			return nil, decimal.Zero, err
		}
		links, err := billing.NewLinkBuilder(checkout)
		if err != nil {
			return nil, decimal.Zero, err
		}
		price, err := decimal.NewFromString(planPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}
		return usecase.NewPaymentPlansUseCase(engine, links), price, nil
	}

	plans := &cobra.Command{
		Use:     "plans",
		Short:   "Show the full payment and installment schedules for a program",
		Example: `  outreachctl payment plans --program AWS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, price, err := plansUC()
			if err != nil {
				return err
			}
			out, err := uc.Plans(context.Background(), usecase.PaymentPlansInput{Program: planProgram, Price: price})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	link := &cobra.Command{
		Use:     "link",
		Short:   "Issue a checkout link for the first charge of a plan",
		Example: `  outreachctl payment link --program AWS --plan installment`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, price, err := plansUC()
			if err != nil {
				return err
			}
			out, err := uc.Link(context.Background(), usecase.PaymentPlansInput{Program: planProgram, Price: price, Plan: planKind})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	for _, c := range []*cobra.Command{plans, link} {
		c.Flags().StringVar(&planProgram, "program", "", "program key (price comes from the catalog)")
		c.Flags().StringVar(&planPrice, "price", "0", "price in dollars when no program is given")
		c.Flags().StringVar(&checkout, "checkout-url", billing.DefaultCheckoutURL, "checkout page for payment links")
	}
	link.Flags().StringVar(&planKind, "plan", "full", "full or installment")

	cmd.AddCommand(process, plans, link)
	return cmd
}
