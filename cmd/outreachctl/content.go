package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

func contentCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Outreach copy",
	}
	cmd.AddCommand(contentRenderCmd(env))
	cmd.AddCommand(programsCmd(env))
	return cmd
}

func contentRenderCmd(env *appEnv) *cobra.Command {
	var (
		channel  string
		audience string
		program  string
		values   map[string]string
	)

	cmd := &cobra.Command{
		Use:     "render",
		Short:   "Render the template for a channel, audience and program",
		Example: `  outreachctl content render --channel sms --audience student --program AWS --set name=Alex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := env.engine()
			if err != nil {
				return err
			}
			out, err := usecase.NewRenderContentUseCase(engine).Execute(context.Background(), usecase.RenderContentInput{
				Channel:  entity.Channel(channel),
				Audience: entity.Audience(audience),
				Program:  program,
				Context:  values,
			})
			if err != nil {
				return err
			}
			if out.Subject != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n\n", out.Subject)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Body)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "email", "email, social or sms")
	cmd.Flags().StringVar(&audience, "audience", "student", "student or corporate")
	cmd.Flags().StringVar(&program, "program", "AWS", "program key")
	cmd.Flags().StringToStringVar(&values, "set", nil, "placeholder values (name=Alex,company=Acme)")
	return cmd
}

func programsCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List the program catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := env.engine()
			if err != nil {
				return err
			}
			for _, key := range engine.ProgramKeys() {
				p, _ := engine.Program(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-40s %s\n", p.Key, p.Name, p.Price.StringFixed(2))
			}
			return nil
		},
	}
}
