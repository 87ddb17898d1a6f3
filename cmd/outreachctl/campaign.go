package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/integration/social"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
	"github.com/xavierca1/sitm-outreach/internal/infra/notify"
	"github.com/xavierca1/sitm-outreach/internal/infra/progress"
	"github.com/xavierca1/sitm-outreach/internal/jobs"
	"github.com/xavierca1/sitm-outreach/internal/leadgen"
	"github.com/xavierca1/sitm-outreach/internal/ledger"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

func campaignCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Campaigns",
	}
	cmd.AddCommand(campaignSimulateCmd(env))
	return cmd
}

func campaignSimulateCmd(env *appEnv) *cobra.Command {
	var (
		program     string
		channel     string
		audience    string
		count       int
		failureRate float64
		perSecond   float64
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate leads and run one campaign end to end in memory",
		Example: `  outreachctl campaign simulate --program AWS --count 200 --failure-rate 0.05
  outreachctl campaign simulate --channel social --audience corporate --program DevOps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, err := env.engine()
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()

			aud := entity.Audience(audience)
			leads, err := leadgen.NewGenerator(identities(seed), engine, 0).
				Generate(ctx, leadgen.Request{Count: count, Kind: aud.LeadKind()}, nil)
			if err != nil {
				return err
			}

			leadRepo := memstore.NewLeadRepository()
			if err := leadRepo.SaveBatch(ctx, leads); err != nil {
				return err
			}

			l := ledger.New(memstore.NewCampaignRepository(), engine)
			sender := notify.NewSimulatedSender(failureRate, seed+1)
			notifier := notify.NewRouter().
				Register(entity.ChannelEmail, sender).
				Register(entity.ChannelSMS, sender)
			runner := jobs.NewRunner(progress.NewMemoryStore())
			dispatch := usecase.NewDispatchCampaignUseCase(
				l, engine, leadRepo, notifier, social.LogPublisher{}, runner, nil, perSecond, 0, nil,
			)
			campaigns := usecase.NewCampaignUseCase(l, dispatch)

			c, err := campaigns.Create(ctx, usecase.CreateCampaignInput{
				Type:        entity.CampaignType(channel),
				Audience:    aud,
				Program:     program,
				Channel:     entity.Channel(channel),
				TargetCount: count,
			})
			if err != nil {
				return err
			}

			start := time.Now()
			c, err = dispatch.Execute(ctx, usecase.DispatchInput{CampaignID: c.ID, Leads: leads}, func(done, total int) {
				fmt.Fprintf(stderr, "\rdispatched %d/%d", done, total)
			})
			fmt.Fprintln(stderr)
			if err != nil {
				return err
			}
			fmt.Fprintf(stderr, "campaign %s finished in %s\n", c.ID, time.Since(start).Round(time.Millisecond))
			return printJSON(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringVar(&program, "program", "AWS", "program key")
	cmd.Flags().StringVar(&channel, "channel", "email", "email, social or sms")
	cmd.Flags().StringVar(&audience, "audience", "student", "student or corporate")
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of leads to target")
	cmd.Flags().Float64Var(&failureRate, "failure-rate", 0, "simulated delivery failure rate")
	cmd.Flags().Float64Var(&perSecond, "rate", 1000, "messages per second")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "deterministic seed (0 = random)")
	return cmd
}
