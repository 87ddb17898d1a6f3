package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/time/rate"

	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/infra/queue"
	"github.com/xavierca1/sitm-outreach/internal/jobs"
	"github.com/xavierca1/sitm-outreach/internal/ledger"
)

var errCancelRequested = errors.New("cancel requested")

const (
	DefaultDispatchRate  = 100
	DefaultDispatchBurst = 10
	DefaultPlatform      = "LinkedIn"
)

type DispatchInput struct {
	CampaignID string
	Leads      []*entity.Lead
	// Platforms is used by social campaigns only.
	Platforms []string
}

type StartDispatchInput struct {
	CampaignID string   `json:"campaign_id"`
	Source     string   `json:"source,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	// Queued publishes the dispatch to RabbitMQ instead of running it here.
	Queued bool `json:"queued,omitempty"`
}

type StartDispatchOutput struct {
	CampaignID string `json:"campaign_id"`
	JobID      string `json:"job_id,omitempty"`
	Queued     bool   `json:"queued"`
}

// DispatchCampaignUseCase sends a campaign to its recipients. Each campaign
// has its own token bucket so concurrent campaigns do not starve each other.
type DispatchCampaignUseCase struct {
	Ledger   *ledger.Ledger
	Engine   *content.Engine
	Leads    entity.LeadRepositoryInterface
	Notifier NotificationDispatcher
	Social   SocialPublisher
	Runner   *jobs.Runner
	Queue    QueueProducerInterface
	Metrics  Metrics

	Rate  rate.Limit
	Burst int

	mu      sync.Mutex
	limiter map[string]*rate.Limiter
	running map[string]string // campaign id -> job id
}

func NewDispatchCampaignUseCase(
	l *ledger.Ledger,
	engine *content.Engine,
	leads entity.LeadRepositoryInterface,
	notifier NotificationDispatcher,
	social SocialPublisher,
	runner *jobs.Runner,
	q QueueProducerInterface,
	perSecond float64,
	burst int,
	metrics Metrics,
) *DispatchCampaignUseCase {
	if perSecond <= 0 {
		perSecond = DefaultDispatchRate
	}
	if burst <= 0 {
		burst = DefaultDispatchBurst
	}
	return &DispatchCampaignUseCase{
		Ledger:   l,
		Engine:   engine,
		Leads:    leads,
		Notifier: notifier,
		Social:   social,
		Runner:   runner,
		Queue:    q,
		Metrics:  metricsOrNoop(metrics),
		Rate:     rate.Limit(perSecond),
		Burst:    burst,
		limiter:  make(map[string]*rate.Limiter),
		running:  make(map[string]string),
	}
}

// Execute runs one dispatch to the end. Recipients are processed in input
// order and a failed item never aborts the batch. When ctx is cancelled, or a
// cancel was requested through the ledger, the campaign is closed as
// Cancelled with the counts reached so far.
func (uc *DispatchCampaignUseCase) Execute(ctx context.Context, input DispatchInput, report jobs.Report) (*entity.Campaign, error) {
	c, started, err := uc.Ledger.BeginDispatch(ctx, input.CampaignID)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	if !started {
		log.Printf("⚠️ Campanha %s já está em disparo, ignorando pedido duplicado", c.ID)
		return c, nil
	}

	limiter := uc.acquireLimiter(c.ID)
	defer uc.releaseLimiter(c.ID)

	runCtx, stop := context.WithCancelCause(ctx)
	defer stop(nil)
	proceed := func() bool {
		if err := limiter.Wait(runCtx); err != nil {
			return false
		}
		if uc.cancelRequested(runCtx, c.ID) {
			stop(errCancelRequested)
			return false
		}
		return true
	}

	var succeeded, failed int
	if c.Channel == entity.ChannelSocial {
		succeeded, failed = uc.publishSocial(runCtx, c, input.Platforms, proceed, report)
	} else {
		succeeded, failed = uc.sendToLeads(runCtx, c, input.Leads, proceed, report)
	}

	if runCtx.Err() != nil {
		closed, err := uc.Ledger.CancelDispatch(context.WithoutCancel(ctx), c.ID, succeeded, failed)
		if err != nil {
			return nil, classify(err, CodeDatabase)
		}
		log.Printf("🛑 Campanha %s cancelada (%d ok / %d falhas)", c.ID, succeeded, failed)
		if errors.Is(context.Cause(runCtx), errCancelRequested) {
			return closed, nil
		}
		return closed, ctx.Err()
	}

	closed, err := uc.Ledger.RecordOutcome(ctx, c.ID, succeeded, failed)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	log.Printf("📊 Campanha %s finalizada: %s (%d ok / %d falhas)", c.ID, closed.Status, succeeded, failed)
	return closed, nil
}

func (uc *DispatchCampaignUseCase) sendToLeads(ctx context.Context, c *entity.Campaign, leads []*entity.Lead, proceed func() bool, report jobs.Report) (succeeded, failed int) {
	if c.TargetCount > 0 && len(leads) > c.TargetCount {
		leads = leads[:c.TargetCount]
	}
	total := len(leads)

	for i, lead := range leads {
		if !proceed() {
			return
		}

		if err := uc.sendOne(ctx, c, lead); err != nil {
			failed++
			uc.Metrics.MessageDispatched(c.Channel, false)
			log.Printf("❌ Campanha %s: falha no lead %s: %v", c.ID, lead.ID, err)
		} else {
			succeeded++
			uc.Metrics.MessageDispatched(c.Channel, true)
			if uc.Leads != nil {
				if err := markContacted(ctx, uc.Leads, lead); err != nil {
					log.Printf("⚠️ Lead %s não marcado como Contacted: %v", lead.ID, err)
				}
			}
		}

		if report != nil {
			report(i+1, total)
		}
	}
	return
}

func (uc *DispatchCampaignUseCase) sendOne(ctx context.Context, c *entity.Campaign, lead *entity.Lead) error {
	msg, err := uc.Engine.RenderMessage(c.Channel, c.Audience, c.Program, content.LeadContext(lead))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out := entity.OutboundMessage{
		CampaignID: c.ID,
		LeadID:     lead.ID,
		Channel:    c.Channel,
		ToName:     lead.DisplayName(),
		ToEmail:    lead.Email,
		ToPhone:    lead.Phone,
		Subject:    msg.Subject,
		Body:       msg.Body,
	}
	if c.Channel == entity.ChannelEmail && out.ToEmail == "" {
		return errors.New("lead has no email")
	}
	if c.Channel == entity.ChannelSMS && out.ToPhone == "" {
		return errors.New("lead has no phone")
	}
	return uc.Notifier.Send(ctx, out)
}

func (uc *DispatchCampaignUseCase) publishSocial(ctx context.Context, c *entity.Campaign, platforms []string, proceed func() bool, report jobs.Report) (succeeded, failed int) {
	if len(platforms) == 0 {
		platforms = []string{DefaultPlatform}
	}
	total := len(platforms)

	post, renderErr := uc.Engine.Render(c.Channel, c.Audience, c.Program, nil)
	for i, platform := range platforms {
		if !proceed() {
			return
		}

		err := renderErr
		if err == nil {
			err = uc.Social.Publish(ctx, post, platform)
		}
		if err != nil {
			failed++
			uc.Metrics.MessageDispatched(c.Channel, false)
			log.Printf("❌ Campanha %s: falha ao publicar em %s: %v", c.ID, platform, err)
		} else {
			succeeded++
			uc.Metrics.MessageDispatched(c.Channel, true)
		}

		if report != nil {
			report(i+1, total)
		}
	}
	return
}

// Start loads the campaign's audience and runs the dispatch as a background
// job, or publishes it to the dispatch queue when Queued is set.
func (uc *DispatchCampaignUseCase) Start(ctx context.Context, input StartDispatchInput) (*StartDispatchOutput, error) {
	c, err := uc.Ledger.Get(ctx, input.CampaignID)
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}

	if c.Status == entity.CampaignDispatching {
		if jobID, ok := uc.runningJob(c.ID); ok {
			return &StartDispatchOutput{CampaignID: c.ID, JobID: jobID}, nil
		}
	}
	if c.Status != entity.CampaignDraft && c.Status != entity.CampaignScheduled {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("campaign %s is %s and cannot be dispatched", c.ID, c.Status),
			Err:     entity.ErrInvalidTransition,
		}
	}

	if input.Queued {
		if uc.Queue == nil {
			return nil, &TechnicalError{Code: CodeQueue, Message: "dispatch queue is not configured"}
		}
		err := uc.Queue.PublishDispatch(ctx, queue.DispatchPayload{
			CampaignID: c.ID,
			Source:     input.Source,
			Platforms:  input.Platforms,
			Origin:     "API",
		})
		if err != nil {
			return nil, &TechnicalError{Code: CodeQueue, Message: err.Error(), Err: err}
		}
		log.Printf("📤 Campanha %s enviada para a fila de disparo", c.ID)
		return &StartDispatchOutput{CampaignID: c.ID, Queued: true}, nil
	}

	leads, err := uc.audience(ctx, c, input.Source)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if jobID, ok := uc.running[c.ID]; ok {
		return &StartDispatchOutput{CampaignID: c.ID, JobID: jobID}, nil
	}

	campaignID := c.ID
	jobID := uc.Runner.Start(ctx, "dispatch_campaign", func(ctx context.Context, report jobs.Report) (string, error) {
		defer uc.finish(campaignID)
		closed, err := uc.Execute(ctx, DispatchInput{CampaignID: campaignID, Leads: leads, Platforms: input.Platforms}, report)
		if closed == nil {
			return "", err
		}
		return fmt.Sprintf("%s: %d ok / %d failed", closed.Status, closed.Succeeded, closed.Failed), err
	})
	uc.running[campaignID] = jobID
	return &StartDispatchOutput{CampaignID: campaignID, JobID: jobID}, nil
}

// HandleDispatch runs a dispatch received from the queue.
func (uc *DispatchCampaignUseCase) HandleDispatch(ctx context.Context, payload queue.DispatchPayload) error {
	c, err := uc.Ledger.Get(ctx, payload.CampaignID)
	if errors.Is(err, entity.ErrCampaignNotFound) {
		return fmt.Errorf("campaign %s: %w", payload.CampaignID, queue.ErrPermanent)
	}
	if err != nil {
		return err
	}

	leads, err := uc.audience(ctx, c, payload.Source)
	if err != nil {
		return err
	}

	_, err = uc.Execute(ctx, DispatchInput{CampaignID: c.ID, Leads: leads, Platforms: payload.Platforms}, nil)
	if errors.Is(err, entity.ErrInvalidTransition) {
		return fmt.Errorf("campaign %s: %v: %w", c.ID, err, queue.ErrPermanent)
	}
	return err
}

// cancelRequested polls the ledger. A read error keeps the dispatch going.
func (uc *DispatchCampaignUseCase) cancelRequested(ctx context.Context, campaignID string) bool {
	requested, err := uc.Ledger.CancelRequested(ctx, campaignID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️ Campanha %s: falha ao consultar cancelamento: %v", campaignID, err)
		}
		return false
	}
	return requested
}

// Stop cancels the in-process job dispatching campaignID, if any.
func (uc *DispatchCampaignUseCase) Stop(campaignID string) (string, bool) {
	jobID, ok := uc.runningJob(campaignID)
	if !ok {
		return "", false
	}
	if err := uc.Runner.Cancel(jobID); err != nil {
		return "", false
	}
	return jobID, true
}

func (uc *DispatchCampaignUseCase) audience(ctx context.Context, c *entity.Campaign, source string) ([]*entity.Lead, error) {
	if c.Channel == entity.ChannelSocial {
		return nil, nil
	}
	leads, err := uc.Leads.List(ctx, entity.LeadFilter{
		Kind:   c.Audience.LeadKind(),
		Source: source,
		Limit:  c.TargetCount,
	})
	if err != nil {
		return nil, classify(err, CodeDatabase)
	}
	return leads, nil
}

func (uc *DispatchCampaignUseCase) runningJob(campaignID string) (string, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	jobID, ok := uc.running[campaignID]
	return jobID, ok
}

func (uc *DispatchCampaignUseCase) finish(campaignID string) {
	uc.mu.Lock()
	delete(uc.running, campaignID)
	uc.mu.Unlock()
}

func (uc *DispatchCampaignUseCase) acquireLimiter(campaignID string) *rate.Limiter {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.limiter[campaignID]
	if !ok {
		l = rate.NewLimiter(uc.Rate, uc.Burst)
		uc.limiter[campaignID] = l
	}
	return l
}

func (uc *DispatchCampaignUseCase) releaseLimiter(campaignID string) {
	uc.mu.Lock()
	delete(uc.limiter, campaignID)
	uc.mu.Unlock()
}
