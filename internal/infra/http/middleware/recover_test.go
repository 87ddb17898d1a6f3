package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/sitm-outreach/internal/ledger"
)

func TestRecoverHaltsOnCorruptLedger(t *testing.T) {
	var halted error
	h := Recover(func(err error) { halted = err })(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(&ledger.CorruptionError{CampaignID: "bad", Reason: `invalid status "Bogus"`})
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns/bad", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Error(t, halted)
	assert.Contains(t, halted.Error(), "Bogus")
}

func TestRecoverKeepsServingOnOtherPanics(t *testing.T) {
	halted := false
	h := Recover(func(error) { halted = true })(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, halted)
}

func TestRecoverRepanicsAbortHandler(t *testing.T) {
	h := Recover(func(error) {})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
