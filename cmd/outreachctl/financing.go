package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

func financingCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financing",
		Short: "Financing quotes",
	}

	var (
		principal string
		provider  string
		program   string
	)
	input := func() (usecase.QuoteFinancingInput, error) {
		in := usecase.QuoteFinancingInput{Provider: provider, Program: program}
		if principal != "" {
			p, err := decimal.NewFromString(principal)
			if err != nil {
				return in, err
			}
			in.Principal = p
		}
		return in, nil
	}

	quote := &cobra.Command{
		Use:     "quote",
		Short:   "Monthly plan for one provider",
		Example: `  outreachctl financing quote --principal 3500 --provider Affirm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := env.engine()
			if err != nil {
				return err
			}
			in, err := input()
			if err != nil {
				return err
			}
			plan, err := usecase.NewQuoteFinancingUseCase(engine).Execute(context.Background(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	quote.Flags().StringVar(&principal, "principal", "", "amount to finance")
	quote.Flags().StringVar(&provider, "provider", "Affirm", "Affirm, Klarna or CountySponsorship")
	quote.Flags().StringVar(&program, "program", "", "use the program price as principal")

	options := &cobra.Command{
		Use:   "options",
		Short: "Plans from every provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := env.engine()
			if err != nil {
				return err
			}
			in, err := input()
			if err != nil {
				return err
			}
			plans, err := usecase.NewQuoteFinancingUseCase(engine).Options(context.Background(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plans)
		},
	}
	options.Flags().StringVar(&principal, "principal", "", "amount to finance")
	options.Flags().StringVar(&program, "program", "", "use the program price as principal")

	cmd.AddCommand(quote, options)
	return cmd
}
