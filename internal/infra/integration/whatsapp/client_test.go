package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

func smsMessage() entity.OutboundMessage {
	return entity.OutboundMessage{
		LeadID:  "lead-1",
		Channel: entity.ChannelSMS,
		ToPhone: "+1 (404) 555-0142",
		Body:    "Hi Alex! Our AWS training can help you earn $120k. Reply YES for info!",
	}
}

func TestSendPostsTextMessage(t *testing.T) {
	var got textMessage
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token", "12345", srv.URL+"/")
	require.NoError(t, c.Send(context.Background(), smsMessage()))

	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "/12345/messages", path)
	assert.Equal(t, "14045550142", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, smsMessage().Body, got.Text.Body)
}

func TestSendReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","code":131026}}`))
	}))
	defer srv.Close()

	err := NewClient("token", "12345", srv.URL).Send(context.Background(), smsMessage())

	assert.ErrorContains(t, err, "invalid recipient")
}

func TestSendRequiresConfigAndPhone(t *testing.T) {
	assert.Error(t, NewClient("", "", "").Send(context.Background(), smsMessage()))

	msg := smsMessage()
	msg.ToPhone = ""
	assert.Error(t, NewClient("token", "12345", "").Send(context.Background(), msg))
}
