package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLeadsGenerateCSV(t *testing.T) {
	out, stderr, err := run(t, "leads", "generate", "--count", "3", "--seed", "7", "--format", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	for _, r := range records[1:] {
		assert.Equal(t, string(entity.LeadStudent), r[1])
		assert.Equal(t, string(entity.LeadNew), r[2])
	}
	assert.Contains(t, stderr, "generated 3/3")
}

func TestLeadsGenerateGovernmentJSON(t *testing.T) {
	out, _, err := run(t, "leads", "generate", "--kind", "GovernmentOffice", "--count", "6")
	require.NoError(t, err)

	var leads []entity.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	assert.Len(t, leads, 6)
	assert.Equal(t, entity.LeadPending, leads[0].Status)

	_, _, err = run(t, "leads", "generate", "--kind", "GovernmentOffice", "--count", "50")
	assert.Error(t, err)
}

func TestLeadsGenerateRejectsUnknownFormat(t *testing.T) {
	_, _, err := run(t, "leads", "generate", "--format", "xml")
	assert.Error(t, err)
}

func TestContentRender(t *testing.T) {
	out, _, err := run(t, "content", "render", "--channel", "sms", "--audience", "student", "--program", "AWS", "--set", "name=Alex")
	require.NoError(t, err)
	assert.Equal(t, "Hi Alex! Our AWS training can help you earn $120k. Reply YES for info!\n", out)
}

func TestContentRenderMissingPlaceholder(t *testing.T) {
	_, _, err := run(t, "content", "render", "--channel", "sms", "--audience", "student", "--program", "AWS")
	assert.Error(t, err)
}

func TestFinancingQuote(t *testing.T) {
	out, _, err := run(t, "financing", "quote", "--principal", "3500", "--provider", "Affirm")
	require.NoError(t, err)

	var plan entity.FinancingPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, entity.FinancingProvider("Affirm"), plan.Provider)
	assert.Positive(t, plan.TermMonths)
}

func TestPaymentProcessInvalidAmount(t *testing.T) {
	_, _, err := run(t, "payment", "process", "--name", "Alex Kim", "--email", "alex@example.com", "--amount", "0")
	assert.Error(t, err)
}

func TestCampaignSimulate(t *testing.T) {
	out, stderr, err := run(t, "campaign", "simulate", "--count", "5", "--seed", "3")
	require.NoError(t, err)

	var c entity.Campaign
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, entity.CampaignCompleted, c.Status)
	assert.Equal(t, 5, c.Succeeded)
	assert.Equal(t, 0, c.Failed)
	assert.Contains(t, stderr, "dispatched 5/5")
}

func TestPaymentPlansAndLink(t *testing.T) {
	out, _, err := run(t, "payment", "plans", "--program", "AWS")
	require.NoError(t, err)
	var plans []entity.PaymentPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plans))
	require.Len(t, plans, 2)
	assert.Len(t, plans[1].Schedule, 3)

	out, _, err = run(t, "payment", "link", "--program", "AWS", "--plan", "installment", "--checkout-url", "https://pay.example.org/checkout")
	require.NoError(t, err)
	var link entity.PaymentLink
	require.NoError(t, json.Unmarshal([]byte(out), &link))
	assert.True(t, strings.HasPrefix(link.URL, "https://pay.example.org/checkout?"), link.URL)
	assert.Equal(t, "1500.00", link.Amount.StringFixed(2))
}
