package board_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/gym"
)

const memberID = "7734347"

// fakeClient is an in-memory booking service.
type fakeClient struct {
	mu         sync.Mutex
	classes    []gym.Class
	tasks      []gym.Task
	classesErr error
	tasksErr   error
	signUpErr  error
	signUps    []gym.SignUpRequest

	// block, when set, holds GetClasses until it is closed. started is
	// signalled once GetClasses is blocked.
	block   chan struct{}
	started chan struct{}

	// signUpBlock holds SignUp the same way.
	signUpBlock   chan struct{}
	signUpStarted chan struct{}
}

func (f *fakeClient) GetClasses(ctx context.Context, days int) ([]gym.Class, error) {
	f.mu.Lock()
	block, started, classes, err := f.block, f.started, f.classes, f.classesErr
	f.mu.Unlock()
	if block != nil {
		started <- struct{}{}
		<-block
	}
	return classes, err
}

func (f *fakeClient) GetPendingTasks(ctx context.Context) ([]gym.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks, f.tasksErr
}

func (f *fakeClient) SignUp(ctx context.Context, id, scheduledTime string) error {
	f.mu.Lock()
	block, started := f.signUpBlock, f.signUpStarted
	f.mu.Unlock()
	if block != nil {
		started <- struct{}{}
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.signUps = append(f.signUps, gym.SignUpRequest{ID: id, MemberID: memberID, ScheduledTime: scheduledTime})
	return nil
}

func (f *fakeClient) MemberID() string { return memberID }

func strPtr(s string) *string { return &s }

func testClasses() []gym.Class {
	return []gym.Class{
		{ID: "a", Date: "2024-01-02", Hour: "09:00", Title: "WOD", AvailabilityNumber: "4", ScheduledTime: strPtr("2024-01-02T09:00:00")},
		{ID: "b", Date: "2024-01-01", Hour: "14:00", Title: "Open Gym", AvailabilityNumber: "0"},
		{ID: "c", Date: "2024-01-01", Hour: "09:00", Title: "Barbell", AvailabilityNumber: "2", ScheduledTime: strPtr("2024-01-01T09:00:00")},
	}
}

func newBoard(t *testing.T, c *fakeClient) *board.Board {
	t.Helper()
	b, err := board.New(c, board.Options{
		Now:      func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestBoard_Load(t *testing.T) {
	c := &fakeClient{
		classes: testClasses(),
		tasks:   []gym.Task{{ID: "c", MemberID: memberID, ScheduledTime: "2024-01-01T09:00:00", Processed: true}},
	}
	b := newBoard(t, c)

	if v := b.View(); v.State != board.LOADING {
		t.Errorf("state before load = %s, want loading", v.State)
	}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	v := b.View()
	if v.State != board.READY {
		t.Fatalf("state = %s, want ready", v.State)
	}
	if want := []string{"2024-01-01", "2024-01-02"}; !reflect.DeepEqual(v.Dates, want) {
		t.Errorf("Dates = %v, want %v", v.Dates, want)
	}
	if v.Selected != "2024-01-01" {
		t.Errorf("Selected = %s, want 2024-01-01", v.Selected)
	}
	if len(v.Classes) != 2 || v.Classes[0].ID != "c" || v.Classes[1].ID != "b" {
		t.Fatalf("Classes = %+v", v.Classes)
	}
	if !v.Classes[0].SignedUp || v.Classes[1].SignedUp {
		t.Errorf("signed up = %v, %v, want true, false", v.Classes[0].SignedUp, v.Classes[1].SignedUp)
	}
	if v.Prev != "" || v.Next != "2024-01-02" {
		t.Errorf("Prev, Next = %q, %q", v.Prev, v.Next)
	}
}

func TestBoard_LoadFailureCommitsNothing(t *testing.T) {
	c := &fakeClient{
		classes:  testClasses(),
		tasksErr: errors.New("connection refused"),
	}
	b := newBoard(t, c)

	err := b.Load(context.Background())
	if !board.IsKind(err, board.KindLoad) {
		t.Fatalf("Load() error = %v, want load error", err)
	}

	v := b.View()
	if v.State != board.FAILED {
		t.Errorf("state = %s, want failed", v.State)
	}
	if v.Classes != nil || v.Dates != nil {
		t.Errorf("partial state committed: %+v", v)
	}

	// retry refetches both
	c.mu.Lock()
	c.tasksErr = nil
	c.mu.Unlock()
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("retry Load() error = %v", err)
	}
	if v := b.View(); v.State != board.READY || len(v.Dates) != 2 {
		t.Errorf("after retry: state = %s, dates = %v", v.State, v.Dates)
	}
}

func TestBoard_LoadTolerateTaskErrors(t *testing.T) {
	c := &fakeClient{
		classes:  testClasses(),
		tasksErr: errors.New("boom"),
	}
	b, err := board.New(c, board.Options{TolerateTaskErrors: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tasks := b.Tasks(); len(tasks) != 0 {
		t.Errorf("Tasks() = %+v, want none", tasks)
	}
}

func TestBoard_StaleLoadDropped(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	c := &fakeClient{classes: testClasses()[:1], block: block, started: started}
	b := newBoard(t, c)

	staleErr := make(chan error, 1)
	go func() {
		staleErr <- b.Load(context.Background())
	}()

	<-started

	c.mu.Lock()
	c.block = nil
	c.classes = testClasses()
	c.mu.Unlock()

	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	close(block)

	if err := <-staleErr; !board.IsStale(err) {
		t.Fatalf("first Load() error = %v, want stale", err)
	}
	if v := b.View(); len(v.Dates) != 2 {
		t.Errorf("stale load overwrote newer data: dates = %v", v.Dates)
	}
}

func TestBoard_SignUpNewTask(t *testing.T) {
	c := &fakeClient{classes: testClasses()}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := b.SignUp(context.Background(), "c", "2024-01-01T09:00:00"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	want := []gym.Task{{ID: "c", MemberID: memberID, ScheduledTime: "2024-01-01T09:00:00", Processed: false}}
	if got := b.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tasks() = %+v, want %+v", got, want)
	}
	if len(c.signUps) != 1 {
		t.Errorf("sign ups sent = %d, want 1", len(c.signUps))
	}
	if v := b.View(); !v.Classes[0].SignedUp {
		t.Error("class c should show signed up")
	}
}

func TestBoard_SignUpExistingTask(t *testing.T) {
	c := &fakeClient{
		classes: testClasses(),
		tasks: []gym.Task{
			{ID: "x", MemberID: memberID, ScheduledTime: "2024-01-05T10:00:00"},
			{ID: "a", MemberID: memberID, ScheduledTime: "2024-01-02T08:00:00", Processed: true},
		},
	}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := b.SignUpClass(context.Background(), "a"); err != nil {
		t.Fatalf("SignUpClass() error = %v", err)
	}

	want := []gym.Task{
		{ID: "x", MemberID: memberID, ScheduledTime: "2024-01-05T10:00:00"},
		{ID: "a", MemberID: memberID, ScheduledTime: "2024-01-02T09:00:00", Processed: true},
	}
	if got := b.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tasks() = %+v, want %+v", got, want)
	}
}

func TestBoard_SignUpFailureLeavesTasks(t *testing.T) {
	c := &fakeClient{
		classes:   testClasses(),
		signUpErr: errors.New("503"),
	}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := b.SignUp(context.Background(), "c", "2024-01-01T09:00:00")
	if !board.IsKind(err, board.KindSignUp) {
		t.Fatalf("SignUp() error = %v, want sign up error", err)
	}
	if board.IsKind(err, board.KindLoad) {
		t.Error("sign up error reported as load error")
	}
	if tasks := b.Tasks(); len(tasks) != 0 {
		t.Errorf("Tasks() = %+v, want none", tasks)
	}
	if v := b.View(); v.State != board.READY || v.Classes[0].Pending {
		t.Errorf("board should stay usable, state = %s", v.State)
	}
}

func TestBoard_SignUpWithoutSchedule(t *testing.T) {
	c := &fakeClient{classes: testClasses()}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := b.SignUpClass(context.Background(), "b")
	if !errors.Is(err, board.ErrNoSchedule) {
		t.Errorf("SignUpClass(b) error = %v, want ErrNoSchedule", err)
	}
	err = b.SignUpClass(context.Background(), "zzz")
	if !errors.Is(err, board.ErrUnknownClass) {
		t.Errorf("SignUpClass(zzz) error = %v, want ErrUnknownClass", err)
	}
	if len(c.signUps) != 0 {
		t.Errorf("booking service called %d times", len(c.signUps))
	}
}

func TestBoard_SignUpInFlightRejected(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	c := &fakeClient{classes: testClasses(), signUpBlock: block, signUpStarted: started}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	first := make(chan error, 1)
	go func() {
		first <- b.SignUpClass(context.Background(), "c")
	}()
	<-started

	if !b.Pending("c") {
		t.Error("Pending(c) = false while sign up in flight")
	}
	if v := b.View(); !v.Classes[0].Pending {
		t.Error("view should mark class c pending")
	}
	err := b.SignUpClass(context.Background(), "c")
	if !errors.Is(err, board.ErrSignUpPending) || !board.IsKind(err, board.KindSignUp) {
		t.Errorf("second SignUpClass() error = %v, want ErrSignUpPending", err)
	}
	if !b.Pending("c") {
		t.Error("rejected sign up cleared the pending marker")
	}

	close(block)
	if err := <-first; err != nil {
		t.Fatalf("first SignUpClass() error = %v", err)
	}
	if b.Pending("c") {
		t.Error("Pending(c) = true after sign up finished")
	}
	if len(c.signUps) != 1 {
		t.Errorf("sign ups sent = %d, want 1", len(c.signUps))
	}
}

func TestBoard_Class(t *testing.T) {
	b := newBoard(t, &fakeClient{classes: testClasses()})
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c, ok := b.Class("a"); !ok || c.Title != "WOD" {
		t.Errorf("Class(a) = %+v, %v", c, ok)
	}
	if _, ok := b.Class("zzz"); ok {
		t.Error("Class(zzz) found")
	}
}

func TestBoard_Navigation(t *testing.T) {
	c := &fakeClient{classes: testClasses()}
	b := newBoard(t, c)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	b.Advance()
	if got := b.View().Selected; got != "2024-01-02" {
		t.Fatalf("after Advance Selected = %s", got)
	}
	b.Advance()
	if v := b.View(); v.Selected != "2024-01-02" || v.Next != "" {
		t.Errorf("Advance at last date moved to %s", v.Selected)
	}
	b.Retreat()
	b.Retreat()
	if got := b.View().Selected; got != "2024-01-01" {
		t.Errorf("Retreat at first date moved to %s", got)
	}

	b.Select("2030-01-01")
	if v := b.View(); v.Selected != "2030-01-01" || len(v.Classes) != 0 {
		t.Errorf("unknown date should show no classes, got %+v", v.Classes)
	}
}

func TestBoard_NavigationEmpty(t *testing.T) {
	b := newBoard(t, &fakeClient{})
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b.Advance()
	b.Retreat()
	v := b.View()
	if v.Selected != "2024-01-01" || len(v.Classes) != 0 || len(v.Dates) != 0 {
		t.Errorf("empty board view = %+v", v)
	}
}

func TestMergeTask(t *testing.T) {
	existing := []gym.Task{{ID: "x", MemberID: "other", ScheduledTime: "t1", Processed: true}}

	got := board.MergeTask(existing, "x", "t2", memberID)
	want := []gym.Task{{ID: "x", MemberID: "other", ScheduledTime: "t2", Processed: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeTask(existing) = %+v, want %+v", got, want)
	}
	if existing[0].ScheduledTime != "t1" {
		t.Error("MergeTask modified its input")
	}

	got = board.MergeTask(nil, "y", "t3", memberID)
	want = []gym.Task{{ID: "y", MemberID: memberID, ScheduledTime: "t3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeTask(nil) = %+v, want %+v", got, want)
	}
}

func TestIsSignedUp(t *testing.T) {
	tasks := []gym.Task{{ID: "a", Processed: true}, {ID: "b"}}
	if !board.IsSignedUp(tasks, "a") || !board.IsSignedUp(tasks, "b") {
		t.Error("IsSignedUp should ignore processed state")
	}
	if board.IsSignedUp(tasks, "c") {
		t.Error("IsSignedUp(c) = true")
	}
}
