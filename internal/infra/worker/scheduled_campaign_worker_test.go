package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type MockDueCampaigns struct {
	mock.Mock
}

func (m *MockDueCampaigns) DueForDispatch(ctx context.Context, now time.Time) ([]*entity.Campaign, error) {
	args := m.Called(ctx, now)
	if v := args.Get(0); v != nil {
		return v.([]*entity.Campaign), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDispatchStarter struct {
	mock.Mock
}

func (m *MockDispatchStarter) Start(ctx context.Context, input usecase.StartDispatchInput) (*usecase.StartDispatchOutput, error) {
	args := m.Called(ctx, input)
	if v := args.Get(0); v != nil {
		return v.(*usecase.StartDispatchOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRunOnceStartsDueCampaigns(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	due := &MockDueCampaigns{}
	starter := &MockDispatchStarter{}
	due.On("DueForDispatch", mock.Anything, now).
		Return([]*entity.Campaign{{ID: "c-1"}, {ID: "c-2"}, {ID: "c-3"}}, nil)
	starter.On("Start", mock.Anything, usecase.StartDispatchInput{CampaignID: "c-1"}).
		Return(&usecase.StartDispatchOutput{CampaignID: "c-1", JobID: "j-1"}, nil)
	starter.On("Start", mock.Anything, usecase.StartDispatchInput{CampaignID: "c-2"}).
		Return(nil, errors.New("already running"))
	starter.On("Start", mock.Anything, usecase.StartDispatchInput{CampaignID: "c-3"}).
		Return(&usecase.StartDispatchOutput{CampaignID: "c-3", JobID: "j-3"}, nil)

	w := NewScheduledCampaignWorker(due, starter, time.Minute, false)
	w.now = func() time.Time { return now }

	assert.Equal(t, 2, w.RunOnce(context.Background()))
	starter.AssertNumberOfCalls(t, "Start", 3)
}

func TestRunOnceQueuedAndErrors(t *testing.T) {
	due := &MockDueCampaigns{}
	starter := &MockDispatchStarter{}
	due.On("DueForDispatch", mock.Anything, mock.Anything).Return([]*entity.Campaign{{ID: "c-1"}}, nil).Once()
	due.On("DueForDispatch", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
	starter.On("Start", mock.Anything, usecase.StartDispatchInput{CampaignID: "c-1", Queued: true}).
		Return(&usecase.StartDispatchOutput{CampaignID: "c-1", Queued: true}, nil)

	w := NewScheduledCampaignWorker(due, starter, 0, true)

	assert.Equal(t, DefaultTickInterval, w.tickInterval)
	assert.Equal(t, 1, w.RunOnce(context.Background()))
	assert.Equal(t, 0, w.RunOnce(context.Background()))
}

func TestStartStopsOnContextCancel(t *testing.T) {
	due := &MockDueCampaigns{}
	due.On("DueForDispatch", mock.Anything, mock.Anything).Return([]*entity.Campaign{}, nil)
	w := NewScheduledCampaignWorker(due, &MockDispatchStarter{}, 10*time.Millisecond, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.GreaterOrEqual(t, len(due.Calls), 2)
}
