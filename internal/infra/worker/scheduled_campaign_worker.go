package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

const DefaultTickInterval = 30 * time.Second

type DueCampaigns interface {
	DueForDispatch(ctx context.Context, now time.Time) ([]*entity.Campaign, error)
}

type DispatchStarter interface {
	Start(ctx context.Context, input usecase.StartDispatchInput) (*usecase.StartDispatchOutput, error)
}

// ScheduledCampaignWorker inicia o disparo das campanhas agendadas cujo
// horário já passou.
type ScheduledCampaignWorker struct {
	campaigns    DueCampaigns
	dispatcher   DispatchStarter
	tickInterval time.Duration
	queued       bool
	now          func() time.Time
}

// NewScheduledCampaignWorker builds the worker. With queued set, due
// campaigns are published to RabbitMQ instead of dispatched in-process.
func NewScheduledCampaignWorker(campaigns DueCampaigns, dispatcher DispatchStarter, tick time.Duration, queued bool) *ScheduledCampaignWorker {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &ScheduledCampaignWorker{
		campaigns:    campaigns,
		dispatcher:   dispatcher,
		tickInterval: tick,
		queued:       queued,
		now:          time.Now,
	}
}

func (w *ScheduledCampaignWorker) Start(ctx context.Context) {
	log.Printf("🕒 Scheduled Campaign Worker iniciado (intervalo %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Scheduled Campaign Worker encerrado")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce starts every due campaign and returns how many were started.
func (w *ScheduledCampaignWorker) RunOnce(ctx context.Context) int {
	due, err := w.campaigns.DueForDispatch(ctx, w.now())
	if err != nil {
		log.Printf("❌ Erro ao buscar campanhas agendadas: %v", err)
		return 0
	}

	started := 0
	for _, c := range due {
		if ctx.Err() != nil {
			break
		}
		out, err := w.dispatcher.Start(ctx, usecase.StartDispatchInput{CampaignID: c.ID, Queued: w.queued})
		if err != nil {
			log.Printf("⚠️ Campanha agendada %s não iniciada: %v", c.ID, err)
			continue
		}
		log.Printf("🚀 Campanha agendada %s iniciada (job=%s queued=%t)", c.ID, out.JobID, out.Queued)
		started++
	}
	return started
}
