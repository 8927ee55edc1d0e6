package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/config"
	"github.com/itsHabib/rsvpboard/internal/notify"
)

// SignUpEvent is the payload the function is invoked with.
type SignUpEvent struct {
	ID            string `json:"id"`
	Title         string `json:"title,omitempty"`
	ScheduledTime string `json:"scheduledTime"`
}

type handler struct {
	board    *board.Board
	notifier notify.Notifier
}

func (h *handler) HandleLambdaEvent(ctx context.Context, event SignUpEvent) (string, error) {
	logx.WithContext(ctx).Infof("received event: %+v", event)

	n := notify.Event{Kind: notify.SIGNED_UP, ClassID: event.ID, Title: event.Title, ScheduledTime: event.ScheduledTime}
	err := h.board.SignUp(ctx, event.ID, event.ScheduledTime)
	if err != nil {
		n.Kind = notify.SIGN_UP_FAILED
		n.Err = err
	}
	if nerr := h.notifier.Notify(ctx, n); nerr != nil {
		logx.WithContext(ctx).Errorf("unable to notify: %v", nerr)
	}
	if err != nil {
		return "", fmt.Errorf("unable to sign up: %w", err)
	}

	return n.Kind.String(), nil
}

func newHandler(ctx context.Context) (*handler, error) {
	c, err := config.Load("")
	if err != nil {
		return nil, err
	}
	if err := c.SetUp(); err != nil {
		return nil, fmt.Errorf("unable to set up logging: %w", err)
	}
	if err := c.ResolveSecrets(ctx); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	gymService, err := c.NewGymService()
	if err != nil {
		return nil, fmt.Errorf("unable to create gym service: %w", err)
	}
	b, err := board.New(gymService, board.Options{Days: c.Gym.Days})
	if err != nil {
		return nil, fmt.Errorf("unable to create board: %w", err)
	}
	notifier, err := c.Notifier()
	if err != nil {
		return nil, fmt.Errorf("unable to create notifier: %w", err)
	}

	return &handler{board: b, notifier: notifier}, nil
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		logx.Must(err)
	}
	lambda.Start(h.HandleLambdaEvent)
}
