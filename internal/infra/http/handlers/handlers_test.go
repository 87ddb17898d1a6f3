package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/identity"
	"github.com/xavierca1/sitm-outreach/internal/infra/integration/social"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
	"github.com/xavierca1/sitm-outreach/internal/infra/notify"
	"github.com/xavierca1/sitm-outreach/internal/infra/progress"
	"github.com/xavierca1/sitm-outreach/internal/jobs"
	"github.com/xavierca1/sitm-outreach/internal/leadgen"
	"github.com/xavierca1/sitm-outreach/internal/ledger"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type apiFixture struct {
	handler   http.Handler
	runner    *jobs.Runner
	leads     *memstore.LeadRepository
	campaigns *memstore.CampaignRepository
	halted    []error
}

func newAPIFixture(t *testing.T, limiter *RateLimiter) *apiFixture {
	t.Helper()
	cat, err := content.DefaultCatalog()
	require.NoError(t, err)
	engine, err := content.NewEngine(cat, nil)
	require.NoError(t, err)

	leads := memstore.NewLeadRepository()
	runner := jobs.NewRunner(progress.NewMemoryStore())
	campaigns := memstore.NewCampaignRepository()
	l := ledger.New(campaigns, engine)
	gen := leadgen.NewGenerator(identity.NewSeeded(3), engine, 100)

	dispatch := usecase.NewDispatchCampaignUseCase(
		l, engine, leads, notify.NewSimulatedSender(0, 1), social.LogPublisher{}, runner, nil, 1000, 10, nil,
	)
	links, err := billing.NewLinkBuilder("")
	require.NoError(t, err)
	f := &apiFixture{runner: runner, leads: leads, campaigns: campaigns}
	rt := &Router{
		Health:    NewHealthHandler(nil, nil, nil),
		Content:   NewContentHandler(usecase.NewRenderContentUseCase(engine), engine),
		Leads:     NewLeadHandler(usecase.NewGenerateLeadsUseCase(gen, leads, runner, 50, nil), usecase.NewListLeadsUseCase(leads), usecase.NewUpdateLeadStatusUseCase(leads)),
		Campaigns: NewCampaignHandler(usecase.NewCampaignUseCase(l, dispatch), dispatch),
		Jobs:      NewJobHandler(runner),
		Financing: NewFinancingHandler(usecase.NewQuoteFinancingUseCase(engine)),
		Payments:  NewPaymentHandler(usecase.NewProcessPaymentUseCase(memstore.NewPaymentRepository(), billing.NewSeededGateway(0, 1), engine, nil), usecase.NewPaymentPlansUseCase(engine, links)),
		Bookings:  NewBookingHandler(usecase.NewBookAppointmentUseCase(memstore.NewBookingRepository(), notify.NewSimulatedSender(0, 2), "", "SolidITMinds")),
		Limiter:   limiter,
		Halt:      func(err error) { f.halted = append(f.halted, err) },
	}
	t.Cleanup(func() { runner.Shutdown(context.Background()) })
	f.handler = rt.Handler()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, field string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var er ErrorResponse
	decode(t, rec, &er)
	assert.Equal(t, code, er.Code)
	assert.Equal(t, field, er.Field)
}

func TestHealthAndPrograms(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "not configured", health.Dependencies["database"])

	rec = f.do(t, http.MethodGet, "/programs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var programs []entity.Program
	decode(t, rec, &programs)
	require.NotEmpty(t, programs)
	keys := make([]string, len(programs))
	for i, p := range programs {
		keys[i] = p.Key
	}
	assert.Contains(t, keys, "AWS")
}

func TestGenerateAndListLeads(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/leads/generate", usecase.GenerateLeadsInput{Count: 20, Kind: entity.LeadCorporate})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out usecase.GenerateLeadsOutput
	decode(t, rec, &out)
	assert.Equal(t, 20, out.Count)
	assert.Len(t, out.Leads, 20)

	rec = f.do(t, http.MethodGet, "/leads?kind=Corporate&limit=5&offset=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []*entity.Lead
	decode(t, rec, &page)
	require.Len(t, page, 5)
	assert.Equal(t, out.Leads[2].ID, page[0].ID)

	assertError(t, f.do(t, http.MethodGet, "/leads?limit=ten", nil), http.StatusBadRequest, usecase.CodeValidation, "limit")
	assertError(t, f.do(t, http.MethodGet, "/leads?kind=Alumni", nil), http.StatusBadRequest, usecase.CodeValidation, "kind")
}

func TestGenerateLeadsErrors(t *testing.T) {
	f := newAPIFixture(t, nil)

	assertError(t, f.do(t, http.MethodPost, "/leads/generate", usecase.GenerateLeadsInput{Count: 51, Kind: entity.LeadStudent}),
		http.StatusUnprocessableEntity, usecase.CodeLimitExceeded, "count")

	rec := f.do(t, http.MethodPost, "/leads/generate", usecase.GenerateLeadsInput{Count: 1, Kind: "Alien"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/leads/generate", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateLeadsAsyncReportsJob(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/leads/generate/async", usecase.GenerateLeadsInput{Count: 300, Kind: entity.LeadStudent})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var accepted JobAcceptedResponse
	decode(t, rec, &accepted)
	require.NotEmpty(t, accepted.JobID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.runner.Wait(ctx, accepted.JobID)
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/jobs/"+accepted.JobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var job entity.Job
	decode(t, rec, &job)
	assert.Equal(t, entity.JobSucceeded, job.State)
	assert.Equal(t, 300, job.Done)
	assert.Equal(t, 300, job.Total)

	assertError(t, f.do(t, http.MethodGet, "/jobs/nope", nil), http.StatusNotFound, usecase.CodeNotFound, "")
	assertError(t, f.do(t, http.MethodDelete, "/jobs/nope", nil), http.StatusNotFound, usecase.CodeNotFound, "")
}

func TestUpdateLeadStatus(t *testing.T) {
	f := newAPIFixture(t, nil)
	lead := &entity.Lead{ID: "lead-1", Kind: entity.LeadStudent, Status: entity.LeadNew, Name: "Alex"}
	require.NoError(t, f.leads.SaveBatch(context.Background(), []*entity.Lead{lead}))

	rec := f.do(t, http.MethodPatch, "/leads/lead-1/status", map[string]string{"status": "Qualified"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got entity.Lead
	decode(t, rec, &got)
	assert.Equal(t, entity.LeadQualified, got.Status)

	assertError(t, f.do(t, http.MethodPatch, "/leads/lead-1/status", map[string]string{"status": "Contacted"}),
		http.StatusConflict, usecase.CodeInvalidTransition, "status")

	rec = f.do(t, http.MethodPatch, "/leads/ghost/status", map[string]string{"status": "Contacted"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderContent(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/content/render", usecase.RenderContentInput{
		Channel: entity.ChannelSMS, Audience: entity.AudienceStudent, Program: "AWS",
		Context: map[string]string{"name": "Alex"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out usecase.RenderContentOutput
	decode(t, rec, &out)
	assert.Equal(t, "Hi Alex! Our AWS training can help you earn $120k. Reply YES for info!", out.Body)

	assertError(t, f.do(t, http.MethodPost, "/content/render", usecase.RenderContentInput{
		Channel: entity.ChannelEmail, Audience: entity.AudienceCorporate, Program: "AWS",
		Context: map[string]string{"name": "Jordan"},
	}), http.StatusUnprocessableEntity, usecase.CodeMissingField, "company")

	rec = f.do(t, http.MethodPost, "/content/render", usecase.RenderContentInput{
		Channel: entity.ChannelEmail, Audience: entity.AudienceStudent, Program: "Kubernetes",
		Context: map[string]string{"name": "Alex"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/content/placeholders?channel=sms&audience=student&program=DevOps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ph map[string][]string
	decode(t, rec, &ph)
	assert.Equal(t, []string{"name", "program", "salary"}, ph["placeholders"])
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/campaigns", usecase.CreateCampaignInput{
		Type: entity.CampaignEmail, Audience: entity.AudienceStudent, Program: "AWS",
		Channel: entity.ChannelEmail, TargetCount: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c entity.Campaign
	decode(t, rec, &c)
	assert.Equal(t, entity.CampaignDraft, c.Status)

	rec = f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/schedule", ScheduleRequest{ScheduledAt: time.Now().Add(time.Hour)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &c)
	assert.Equal(t, entity.CampaignScheduled, c.Status)

	rec = f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &c)
	assert.Equal(t, entity.CampaignCancelled, c.Status)

	assertError(t, f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/outcome", usecase.RecordOutcomeInput{Succeeded: 95, Failed: 5}),
		http.StatusConflict, usecase.CodeInvalidTransition, "")
	assertError(t, f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/dispatch", nil),
		http.StatusConflict, usecase.CodeInvalidTransition, "")

	rec = f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/rerun", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var rerun entity.Campaign
	decode(t, rec, &rerun)
	assert.Equal(t, c.ID, rerun.RerunOf)
	assert.Equal(t, entity.CampaignDraft, rerun.Status)

	rec = f.do(t, http.MethodGet, "/campaigns?status=Draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Campaign
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, rerun.ID, list[0].ID)

	assertError(t, f.do(t, http.MethodGet, "/campaigns/unknown", nil), http.StatusNotFound, usecase.CodeNotFound, "")
}

func TestDispatchCampaignOverHTTP(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/leads/generate", usecase.GenerateLeadsInput{Count: 12, Kind: entity.LeadStudent})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/campaigns", usecase.CreateCampaignInput{
		Type: entity.CampaignSMS, Audience: entity.AudienceStudent, Program: "AWS",
		Channel: entity.ChannelSMS, TargetCount: 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var c entity.Campaign
	decode(t, rec, &c)

	rec = f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/dispatch", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var out usecase.StartDispatchOutput
	decode(t, rec, &out)
	require.NotEmpty(t, out.JobID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.runner.Wait(ctx, out.JobID)
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/campaigns/"+c.ID, nil)
	decode(t, rec, &c)
	assert.Equal(t, entity.CampaignCompleted, c.Status)
	assert.Equal(t, 10, c.Succeeded)
	assert.Zero(t, c.Failed)

	assertError(t, f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/dispatch", `{"queued":true}`),
		http.StatusConflict, usecase.CodeInvalidTransition, "")
}

func TestQueuedDispatchWithoutBroker(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/campaigns", usecase.CreateCampaignInput{
		Type: entity.CampaignEmail, Audience: entity.AudienceStudent, Program: "AWS", Channel: entity.ChannelEmail,
	})
	var c entity.Campaign
	decode(t, rec, &c)

	assertError(t, f.do(t, http.MethodPost, "/campaigns/"+c.ID+"/dispatch", `{"queued":true}`),
		http.StatusInternalServerError, usecase.CodeQueue, "")
}

func TestFinancing(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/financing/quote?principal=3500&provider=Affirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plan map[string]interface{}
	decode(t, rec, &plan)
	assert.Equal(t, "291.67", plan["monthly_amount"])
	assert.Equal(t, "12 months", plan["term"])

	rec = f.do(t, http.MethodGet, "/financing/options?program=AWS", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plans []map[string]interface{}
	decode(t, rec, &plans)
	assert.Len(t, plans, 3)

	assertError(t, f.do(t, http.MethodGet, "/financing/quote?principal=3500&provider=PayPal", nil),
		http.StatusUnprocessableEntity, usecase.CodeUnsupported, "provider")
	assertError(t, f.do(t, http.MethodGet, "/financing/quote?principal=abc&provider=Affirm", nil),
		http.StatusBadRequest, usecase.CodeValidation, "principal")
}

func TestPayments(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/payments", `{"payer_name":"Alex Kim","payer_email":"alex@example.com","program":"AWS","amount":"3500","method":"credit card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p entity.Payment
	decode(t, rec, &p)
	assert.True(t, strings.HasPrefix(p.TransactionID, "TX-"))
	assert.Equal(t, entity.PaymentApproved, p.Status)
	assert.Equal(t, int64(350000), p.AmountCents)

	rec = f.do(t, http.MethodGet, "/payments/"+p.TransactionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assertError(t, f.do(t, http.MethodPost, "/payments", `{"payer_name":"Alex Kim","payer_email":"alex@example.com","amount":0,"method":"Klarna"}`),
		http.StatusUnprocessableEntity, usecase.CodeInvalidAmount, "amount")
	assertError(t, f.do(t, http.MethodGet, "/payments/TX-missing", nil), http.StatusNotFound, usecase.CodeNotFound, "")
}

func TestPaymentPlansAndLinks(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/payments/plans?program=AWS", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plans []entity.PaymentPlan
	decode(t, rec, &plans)
	require.Len(t, plans, 2)
	assert.Equal(t, entity.PlanInstallment, plans[1].Kind)
	assert.Equal(t, "1500.00", plans[1].Schedule[0].Amount.StringFixed(2))

	rec = f.do(t, http.MethodPost, "/payments/links", `{"program":"AWS","plan":"installment"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var link entity.PaymentLink
	decode(t, rec, &link)
	assert.True(t, strings.HasPrefix(link.URL, "https://payment.example.com/checkout?"), link.URL)
	assert.Contains(t, link.URL, "amount=1500")

	assertError(t, f.do(t, http.MethodPost, "/payments/links", `{"program":"AWS","plan":"layaway"}`),
		http.StatusBadRequest, usecase.CodeValidation, "plan")
	assertError(t, f.do(t, http.MethodGet, "/payments/plans?price=abc", nil),
		http.StatusBadRequest, usecase.CodeValidation, "price")
}

func TestBookings(t *testing.T) {
	f := newAPIFixture(t, nil)
	date := time.Now().AddDate(0, 0, 2).Format(entity.DateLayout)
	body := map[string]string{
		"name": "Alex Kim", "email": "alex@example.com", "service": "Recruiting Services",
		"date": date, "slot": entity.TimeSlots[0],
	}

	rec := f.do(t, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b entity.Booking
	decode(t, rec, &b)
	assert.Equal(t, entity.ServiceRecruiting, b.Service)

	assertError(t, f.do(t, http.MethodPost, "/bookings", body), http.StatusConflict, usecase.CodeSlotTaken, "slot")

	rec = f.do(t, http.MethodGet, "/bookings/slots?date="+date, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var slots SlotsResponse
	decode(t, rec, &slots)
	assert.Equal(t, entity.TimeSlots[1:], slots.Free)
	assert.Len(t, slots.Services, 4)

	far := time.Now().AddDate(0, 0, 45).Format(entity.DateLayout)
	body["date"] = far
	assertError(t, f.do(t, http.MethodPost, "/bookings", body), http.StatusBadRequest, usecase.CodeValidation, "date")
}

func TestRateLimiterGuardsGeneration(t *testing.T) {
	f := newAPIFixture(t, NewRateLimiter(1, time.Minute))
	body := usecase.GenerateLeadsInput{Count: 1, Kind: entity.LeadStudent}

	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/leads/generate", body).Code)
	rec := f.do(t, http.MethodPost, "/leads/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// reads are not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/leads", nil).Code)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(r))
}

func TestCorruptCampaignHaltsService(t *testing.T) {
	f := newAPIFixture(t, nil)
	require.NoError(t, f.campaigns.Create(context.Background(), &entity.Campaign{
		ID: "bad", Type: entity.CampaignEmail, Audience: entity.AudienceStudent, Program: "AWS",
		Channel: entity.ChannelEmail, Status: "Bogus",
	}))

	rec := f.do(t, http.MethodGet, "/campaigns/bad", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, f.halted, 1)
	assert.Contains(t, f.halted[0].Error(), "Bogus")
}

func TestCancelRemoteDispatchIsAccepted(t *testing.T) {
	f := newAPIFixture(t, nil)
	require.NoError(t, f.campaigns.Create(context.Background(), &entity.Campaign{
		ID: "remote", Type: entity.CampaignEmail, Audience: entity.AudienceStudent, Program: "AWS",
		Channel: entity.ChannelEmail, Status: entity.CampaignDispatching,
	}))

	rec := f.do(t, http.MethodPost, "/campaigns/remote/cancel", nil)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var c entity.Campaign
	decode(t, rec, &c)
	assert.True(t, c.CancelRequested)
	assert.Equal(t, entity.CampaignDispatching, c.Status)
}
