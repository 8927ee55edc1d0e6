package main

import (
	"context"
	"errors"
	"testing"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/gym"
	"github.com/itsHabib/rsvpboard/internal/notify"
)

type fakeClient struct {
	err     error
	signUps int
}

func (f *fakeClient) GetClasses(ctx context.Context, days int) ([]gym.Class, error) {
	return nil, nil
}

func (f *fakeClient) GetPendingTasks(ctx context.Context) ([]gym.Task, error) {
	return nil, nil
}

func (f *fakeClient) SignUp(ctx context.Context, id, scheduledTime string) error {
	f.signUps++
	return f.err
}

func (f *fakeClient) MemberID() string { return "7734347" }

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Notify(ctx context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return nil
}

func newTestHandler(t *testing.T, c *fakeClient) (*handler, *recordingNotifier) {
	t.Helper()
	b, err := board.New(c, board.Options{})
	if err != nil {
		t.Fatalf("board.New() error = %v", err)
	}
	n := &recordingNotifier{}
	return &handler{board: b, notifier: n}, n
}

func TestHandleLambdaEvent(t *testing.T) {
	c := &fakeClient{}
	h, n := newTestHandler(t, c)

	status, err := h.HandleLambdaEvent(context.Background(), SignUpEvent{ID: "a", ScheduledTime: "2024-01-02T09:00:00"})
	if err != nil {
		t.Fatalf("HandleLambdaEvent() error = %v", err)
	}
	if status != "signed up" {
		t.Errorf("status = %q", status)
	}
	if c.signUps != 1 || len(n.events) != 1 {
		t.Errorf("signUps = %d, events = %d", c.signUps, len(n.events))
	}
}

func TestHandleLambdaEvent_Errors(t *testing.T) {
	c := &fakeClient{err: errors.New("503")}
	h, n := newTestHandler(t, c)

	if _, err := h.HandleLambdaEvent(context.Background(), SignUpEvent{ID: "a", ScheduledTime: "t"}); !board.IsKind(err, board.KindSignUp) {
		t.Errorf("HandleLambdaEvent() error = %v, want sign up error", err)
	}
	if len(n.events) != 1 || n.events[0].Kind != notify.SIGN_UP_FAILED {
		t.Errorf("events = %+v", n.events)
	}

	if _, err := h.HandleLambdaEvent(context.Background(), SignUpEvent{ID: "a"}); !errors.Is(err, board.ErrNoSchedule) {
		t.Errorf("HandleLambdaEvent() without schedule error = %v", err)
	}
	if c.signUps != 1 {
		t.Errorf("booking service called %d times, want 1", c.signUps)
	}
}
