package entity

// OutboundMessage is one rendered message addressed to one recipient.
type OutboundMessage struct {
	CampaignID string  `json:"campaign_id,omitempty"`
	LeadID     string  `json:"lead_id,omitempty"`
	Channel    Channel `json:"channel"`
	ToName     string  `json:"to_name"`
	ToEmail    string  `json:"to_email,omitempty"`
	ToPhone    string  `json:"to_phone,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	Body       string  `json:"body"`
}
