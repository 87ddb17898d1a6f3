package entity

import (
	"context"
	"time"
)

type CampaignType string

const (
	CampaignEmail   CampaignType = "email"
	CampaignSocial  CampaignType = "social"
	CampaignSMS     CampaignType = "sms"
	CampaignPayment CampaignType = "payment"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignEmail, CampaignSocial, CampaignSMS, CampaignPayment:
		return true
	}
	return false
}

type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelSocial Channel = "social"
	ChannelSMS    Channel = "sms"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSocial || c == ChannelSMS
}

type Audience string

const (
	AudienceStudent   Audience = "student"
	AudienceCorporate Audience = "corporate"
)

func (a Audience) Valid() bool {
	return a == AudienceStudent || a == AudienceCorporate
}

// LeadKind maps the audience to the lead variant it targets.
func (a Audience) LeadKind() LeadKind {
	if a == AudienceCorporate {
		return LeadCorporate
	}
	return LeadStudent
}

type CampaignStatus string

const (
	CampaignDraft       CampaignStatus = "Draft"
	CampaignScheduled   CampaignStatus = "Scheduled"
	CampaignDispatching CampaignStatus = "Dispatching"
	CampaignCompleted   CampaignStatus = "Completed"
	CampaignFailed      CampaignStatus = "Failed"
	CampaignCancelled   CampaignStatus = "Cancelled"
)

// campaignTransitions lists every allowed edge of the campaign state machine.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:       {CampaignScheduled, CampaignDispatching, CampaignCancelled},
	CampaignScheduled:   {CampaignDispatching, CampaignCancelled},
	CampaignDispatching: {CampaignCompleted, CampaignFailed, CampaignCancelled},
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignDispatching,
		CampaignCompleted, CampaignFailed, CampaignCancelled:
		return true
	}
	return false
}

func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignFailed || s == CampaignCancelled
}

func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID          string         `json:"id"`
	Type        CampaignType   `json:"type"`
	Audience    Audience       `json:"audience"`
	Program     string         `json:"program"`
	Channel     Channel        `json:"channel"`
	Status      CampaignStatus `json:"status"`
	TargetCount int            `json:"target_count"`

	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// CancelRequested é marcado quando o cancelamento chega enquanto outro
	// processo está disparando; o disparador fecha a campanha com as contagens parciais.
	CancelRequested bool `json:"cancel_requested,omitempty"`

	// RerunOf aponta para a campanha original quando criada via re-run.
	RerunOf string `json:"rerun_of,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CampaignFilter struct {
	Status CampaignStatus
	Type   CampaignType
}

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *Campaign) error
	FindByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]*Campaign, error)
	// Update writes c only if the stored status still equals expected.
	// It returns ErrStaleCampaign otherwise.
	Update(ctx context.Context, c *Campaign, expected CampaignStatus) error
}
