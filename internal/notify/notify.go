// Package notify tells the member how a sign-up went.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

type EventKind int

func (k EventKind) String() string {
	switch k {
	case SIGNED_UP:
		return "signed up"
	case SIGN_UP_FAILED:
		return "sign up failed"
	default:
		return "unknown"
	}
}

const (
	SIGNED_UP EventKind = iota
	SIGN_UP_FAILED
)

type Event struct {
	Kind          EventKind
	ClassID       string
	Title         string
	ScheduledTime string
	Err           error
}

func (e Event) Message() string {
	title := strings.Replace(e.Title, "\n", " ", -1)
	if title == "" {
		title = e.ClassID
	}
	switch e.Kind {
	case SIGNED_UP:
		return fmt.Sprintf("Successfully signed up for %s at %s", title, e.ScheduledTime)
	default:
		return fmt.Sprintf("Failed to sign up for %s. Please try again.", title)
	}
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Log writes events to the application log.
type Log struct{}

func (Log) Notify(ctx context.Context, e Event) error {
	if e.Kind == SIGN_UP_FAILED {
		logx.WithContext(ctx).Errorf("%s: %v", e.Message(), e.Err)
		return nil
	}
	logx.WithContext(ctx).Info(e.Message())
	return nil
}

// Multi sends every event to all of its notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
