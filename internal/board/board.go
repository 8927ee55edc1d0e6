// Package board holds the session state of a member browsing the class
// schedule: the loaded classes and tasks, the selected day and the sign-ups in
// flight.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/itsHabib/rsvpboard/internal/gym"
	"github.com/itsHabib/rsvpboard/internal/schedule"
)

type ClassFetcher interface {
	GetClasses(ctx context.Context, days int) ([]gym.Class, error)
}

type TaskFetcher interface {
	GetPendingTasks(ctx context.Context) ([]gym.Task, error)
}

type Booker interface {
	SignUp(ctx context.Context, id, scheduledTime string) error
}

// Client is the booking service as seen by the board. *gym.Service implements it.
type Client interface {
	ClassFetcher
	TaskFetcher
	Booker
	MemberID() string
}

type Options struct {
	// Days is the forward-looking window to load. Defaults to gym.DefaultDays.
	Days int
	// TolerateTaskErrors treats a failed task fetch as an empty task list.
	TolerateTaskErrors bool
	// Location decides which calendar date "today" is. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Board is the state of one browsing session. It is safe for concurrent use;
// network calls are made without holding the lock.
type Board struct {
	client Client
	opts   Options

	mu      sync.Mutex
	nav     *schedule.Navigator
	classes []gym.Class
	tasks   []gym.Task
	loading bool
	loaded  bool
	err     error
	seq     uint64
	pending map[string]bool
}

func New(client Client, opts Options) (*Board, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if opts.Days <= 0 {
		opts.Days = gym.DefaultDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Board{
		client:  client,
		opts:    opts,
		nav:     schedule.Today(opts.Now(), opts.Location),
		pending: make(map[string]bool),
	}, nil
}

// Load fetches classes and pending tasks concurrently and commits both only if
// both succeed. A load that completes after a newer one was issued is dropped
// and returns ErrStaleLoad.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.loading = true
	b.err = nil
	b.mu.Unlock()

	var (
		classes []gym.Class
		tasks   []gym.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := b.client.GetClasses(gctx, b.opts.Days)
		if err != nil {
			return fmt.Errorf("unable to get classes: %w", err)
		}
		classes = c
		return nil
	})
	g.Go(func() error {
		t, err := b.client.GetPendingTasks(gctx)
		if err != nil {
			if b.opts.TolerateTaskErrors {
				logx.WithContext(ctx).Errorf("unable to get pending tasks, continuing without: %v", err)
				return nil
			}
			return fmt.Errorf("unable to get pending tasks: %w", err)
		}
		tasks = t
		return nil
	})
	err := g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		logx.WithContext(ctx).Infof("dropping load %d, latest is %d", seq, b.seq)
		return ErrStaleLoad
	}
	b.loading = false
	if err != nil {
		b.err = &Error{Kind: KindLoad, Err: err}
		return b.err
	}
	b.classes = classes
	b.tasks = tasks
	b.loaded = true
	logx.WithContext(ctx).Infof("loaded %d classes and %d tasks", len(classes), len(tasks))

	return nil
}

// SignUp books classID at scheduledTime and records the booking locally. An
// empty scheduledTime is rejected without calling the booking service, as is a
// class that already has a sign-up in flight. On failure the local tasks are
// left untouched.
func (b *Board) SignUp(ctx context.Context, classID, scheduledTime string) error {
	if scheduledTime == "" {
		return &Error{Kind: KindSignUp, ClassID: classID, Err: ErrNoSchedule}
	}

	b.mu.Lock()
	if b.pending[classID] {
		b.mu.Unlock()
		return &Error{Kind: KindSignUp, ClassID: classID, Err: ErrSignUpPending}
	}
	b.pending[classID] = true
	b.mu.Unlock()

	err := b.client.SignUp(ctx, classID, scheduledTime)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, classID)

	if err != nil {
		return &Error{Kind: KindSignUp, ClassID: classID, Err: err}
	}
	b.tasks = MergeTask(b.tasks, classID, scheduledTime, b.client.MemberID())

	return nil
}

// SignUpClass signs up for a loaded class using its own scheduled time.
func (b *Board) SignUpClass(ctx context.Context, classID string) error {
	c, ok := b.Class(classID)
	if !ok {
		return &Error{Kind: KindSignUp, ClassID: classID, Err: ErrUnknownClass}
	}
	return b.SignUp(ctx, classID, c.Schedule())
}

// Pending reports whether a sign-up for classID is in flight.
func (b *Board) Pending(classID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[classID]
}

// Class returns the loaded class with the given id, on any day.
func (b *Board) Class(classID string) (gym.Class, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.Find(b.classes, func(c gym.Class) bool {
		return c.ID == classID
	})
}

// MergeTask returns tasks with a booking for id at scheduledTime. An existing
// task keeps its other fields; a new one is appended unprocessed. The input
// slice is not modified.
func MergeTask(tasks []gym.Task, id, scheduledTime, memberID string) []gym.Task {
	merged := make([]gym.Task, len(tasks), len(tasks)+1)
	copy(merged, tasks)

	_, i, ok := lo.FindIndexOf(merged, func(t gym.Task) bool {
		return t.ID == id
	})
	if ok {
		merged[i].ScheduledTime = scheduledTime
		return merged
	}

	return append(merged, gym.Task{
		ID:            id,
		MemberID:      memberID,
		ScheduledTime: scheduledTime,
		Processed:     false,
	})
}

// IsSignedUp reports whether any task, processed or not, is for classID.
func IsSignedUp(tasks []gym.Task, classID string) bool {
	return lo.ContainsBy(tasks, func(t gym.Task) bool {
		return t.ID == classID
	})
}

func (b *Board) Advance() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nav.Advance(schedule.Dates(schedule.GroupByDay(b.classes)))
}

func (b *Board) Retreat() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nav.Retreat(schedule.Dates(schedule.GroupByDay(b.classes)))
}

func (b *Board) Select(date string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nav.Select(date)
}

// Days groups the loaded classes by day.
func (b *Board) Days() []schedule.Day {
	b.mu.Lock()
	defer b.mu.Unlock()
	return schedule.GroupByDay(b.classes)
}

// Tasks returns a copy of the member's tasks.
func (b *Board) Tasks() []gym.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]gym.Task(nil), b.tasks...)
}

// Err returns the last load failure, if the latest load failed.
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// IsStale reports whether err came from a superseded load.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleLoad)
}
