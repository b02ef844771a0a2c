package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	repo "github.com/oshokin/work-alarm/internal/repository/settings"
	"github.com/oshokin/work-alarm/internal/service/notify"
	"github.com/oshokin/work-alarm/internal/service/store"
	"github.com/oshokin/work-alarm/internal/service/wake"
)

var errTestDisk = errors.New("test disk error")

// fakeScheduler records arm and disarm calls.
type fakeScheduler struct {
	// mu protects the fields below.
	mu sync.Mutex
	// rule is the last armed rule; nil while disarmed.
	rule *alarm.Rule
	// arms counts Arm calls.
	arms int
	// horizon is the horizon of the last Arm call.
	horizon int
}

func (f *fakeScheduler) Arm(_ context.Context, rule *alarm.Rule, horizonDays int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rule = rule.Clone()
	f.arms++
	f.horizon = horizonDays

	return 1
}

func (f *fakeScheduler) Disarm(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rule = nil
}

func (f *fakeScheduler) Pending() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rule == nil {
		return nil
	}

	return []time.Time{time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeScheduler) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rule != nil
}

// fakePresenter records notified instants.
type fakePresenter struct {
	// permission is returned from Permission.
	permission notify.Permission
	// background is returned from Background.
	background bool
	// notified holds every instant passed to Notify.
	notified []time.Time
}

func (f *fakePresenter) Notify(_ context.Context, at time.Time) error {
	f.notified = append(f.notified, at)

	return nil
}

func (f *fakePresenter) Permission(context.Context) notify.Permission { return f.permission }

func (f *fakePresenter) Background() bool { return f.background }

// fakeWaker records registered jobs.
type fakeWaker struct {
	// jobs holds every registered job.
	jobs []wake.Job
	// registered is cleared by Unregister.
	registered bool
}

func (f *fakeWaker) Register(job wake.Job) error {
	f.jobs = append(f.jobs, job)
	f.registered = true

	return nil
}

func (f *fakeWaker) Unregister() { f.registered = false }

func (f *fakeWaker) NextWake() time.Time {
	if !f.registered {
		return time.Time{}
	}

	return mondayMorning.Add(wake.MinInterval)
}

// failingRepository fails every Save.
type failingRepository struct{}

func (failingRepository) Load(context.Context) (*alarm.Settings, error) { return nil, repo.ErrNotFound }

func (failingRepository) Save(context.Context, *alarm.Settings) error { return errTestDisk }

func (failingRepository) Close() error { return nil }

// mondayMorning is a Monday inside the default Sunday-Thursday rule.
var mondayMorning = time.Date(2025, time.June, 2, 10, 10, 0, 0, time.UTC)

type fixture struct {
	engine    *Engine
	scheduler *fakeScheduler
	presenter *fakePresenter
	waker     *fakeWaker
	path      string
}

func newFixture(t *testing.T, permission notify.Permission) *fixture {
	t.Helper()

	f := &fixture{
		scheduler: new(fakeScheduler),
		presenter: &fakePresenter{permission: permission, background: true},
		waker:     new(fakeWaker),
		path:      filepath.Join(t.TempDir(), "settings.json"),
	}

	st := store.New(repo.NewFileRepository(f.path), nil)
	f.engine = New(st, f.scheduler, f.presenter, f.waker, Options{
		Wake:     true,
		Location: time.UTC,
		Now:      func() time.Time { return mondayMorning },
	})
	f.engine.Restore(context.Background())

	return f
}

func actor() *alarm.Actor {
	return &alarm.Actor{Hostname: "desk", Username: "tester"}
}

// TestEnable_PermissionDenied checks that a denied permission leaves settings and triggers untouched.
func TestEnable_PermissionDenied(t *testing.T) {
	t.Parallel()

	for _, permission := range []notify.Permission{notify.PermissionDenied, notify.PermissionDefault} {
		f := newFixture(t, permission)

		settings, err := f.engine.Enable(context.Background(), actor())
		require.ErrorIs(t, err, alarm.ErrPermissionDenied)
		require.Nil(t, settings)
		require.False(t, f.engine.Settings().Enabled)
		require.Empty(t, f.engine.Pending())
		require.False(t, f.engine.Armed())
		require.Empty(t, f.waker.jobs)
	}
}

// TestEnableDisable walks the armed/disarmed transitions and checks persistence.
func TestEnableDisable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	var states []bool

	f.engine.OnStateChange(func(armed bool) { states = append(states, armed) })

	settings, err := f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)
	require.True(t, settings.Enabled)
	require.Equal(t, mondayMorning, settings.UpdatedAt)
	require.Equal(t, actor(), settings.UpdatedBy)
	require.True(t, f.engine.Armed())
	require.Len(t, f.waker.jobs, 1)
	require.Equal(t, mondayMorning.Add(wake.MinInterval), f.engine.NextWake())

	stored, err := repo.NewFileRepository(f.path).Load(context.Background())
	require.NoError(t, err)
	require.True(t, stored.Enabled)

	for range 2 {
		settings, err = f.engine.Disable(context.Background(), actor())
		require.NoError(t, err)
		require.False(t, settings.Enabled)
		require.False(t, f.engine.Armed())
		require.False(t, f.waker.registered)
		require.True(t, f.engine.NextWake().IsZero())
	}

	require.Equal(t, []bool{true, false, false}, states)
}

// TestUpdateRule verifies validation, persistence and re-arming.
func TestUpdateRule(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	_, err := f.engine.UpdateRule(context.Background(), actor(), &alarm.Rule{
		Days: []time.Weekday{time.Monday}, StartHour: 12, EndHour: 9, IntervalMinutes: 10,
	})
	require.ErrorIs(t, err, alarm.ErrInvalidRule)
	require.True(t, alarm.DefaultRule().Equal(f.engine.Settings().Rule))

	rule := &alarm.Rule{
		Days:            []time.Weekday{time.Friday, time.Monday, time.Monday},
		StartHour:       8,
		EndHour:         9,
		IntervalMinutes: 15,
	}

	// Disabled: stored, not armed.
	settings, err := f.engine.UpdateRule(context.Background(), actor(), rule)
	require.NoError(t, err)
	require.Equal(t, []time.Weekday{time.Monday, time.Friday}, settings.Rule.Days)
	require.Zero(t, f.scheduler.arms)

	_, err = f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)

	rule.IntervalMinutes = 30

	_, err = f.engine.UpdateRule(context.Background(), actor(), rule)
	require.NoError(t, err)
	require.Equal(t, 2, f.scheduler.arms)
	require.Equal(t, 30, f.scheduler.rule.IntervalMinutes)
}

// TestEnable_PersistFailure verifies a failed write leaves the engine disarmed and disabled.
func TestEnable_PersistFailure(t *testing.T) {
	t.Parallel()

	scheduler := new(fakeScheduler)
	e := New(store.New(failingRepository{}, nil), scheduler,
		&fakePresenter{permission: notify.PermissionGranted}, nil, Options{})
	e.Restore(context.Background())

	_, err := e.Enable(context.Background(), actor())
	require.ErrorIs(t, err, errTestDisk)
	require.False(t, e.Settings().Enabled)
	require.False(t, e.Armed())
}

// TestRestore_ArmsEnabledSettings verifies a restart re-arms persisted enabled settings.
func TestRestore_ArmsEnabledSettings(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	_, err := f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)

	scheduler := new(fakeScheduler)
	restarted := New(store.New(repo.NewFileRepository(f.path), nil), scheduler, f.presenter, nil, Options{})

	settings := restarted.Restore(context.Background())
	require.True(t, settings.Enabled)
	require.True(t, scheduler.Armed())
}

// TestCatchUp verifies catch-up runs only while enabled and the wake job drives it.
func TestCatchUp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	require.Empty(t, f.engine.CatchUp(context.Background(), 0))

	_, err := f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)

	want := []time.Time{time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)}
	require.Equal(t, want, f.engine.CatchUp(context.Background(), 0))

	f.waker.jobs[0](context.Background())
	require.Equal(t, []time.Time{want[0], want[0]}, f.presenter.notified)
}

// TestNew_HorizonCap verifies an oversized horizon is cut to alarm.MaxHorizonDays.
func TestNew_HorizonCap(t *testing.T) {
	t.Parallel()

	scheduler := new(fakeScheduler)
	st := store.New(repo.NewFileRepository(filepath.Join(t.TempDir(), "settings.json")), nil)
	e := New(st, scheduler, &fakePresenter{permission: notify.PermissionGranted}, nil, Options{
		HorizonDays: 365,
		Now:         func() time.Time { return mondayMorning },
	})

	_, err := e.Enable(context.Background(), actor())
	require.NoError(t, err)
	require.Equal(t, alarm.MaxHorizonDays, scheduler.horizon)
	require.True(t, e.NextWake().IsZero())
}

// TestCatchUp_LookbackCap verifies a window longer than a day is cut to alarm.MaxLookback.
func TestCatchUp_LookbackCap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	_, err := f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)

	capped := f.engine.CatchUp(context.Background(), alarm.MaxLookback)
	require.NotEmpty(t, capped)
	require.False(t, capped[0].Before(mondayMorning.Add(-alarm.MaxLookback)))

	require.Equal(t, capped, f.engine.CatchUp(context.Background(), 365*24*time.Hour))
}

// TestPreview verifies the preview follows the rule even while disabled.
func TestPreview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	preview := f.engine.Preview(1)
	require.Len(t, preview, 23)
	require.Equal(t, time.Date(2025, time.June, 2, 10, 20, 0, 0, time.UTC), preview[0])
	require.Equal(t, time.Date(2025, time.June, 2, 17, 40, 0, 0, time.UTC), preview[len(preview)-1])
}

// TestRefresh verifies re-arming happens only while enabled.
func TestRefresh(t *testing.T) {
	t.Parallel()

	f := newFixture(t, notify.PermissionGranted)

	f.engine.Refresh(context.Background())
	require.Zero(t, f.scheduler.arms)

	_, err := f.engine.Enable(context.Background(), actor())
	require.NoError(t, err)

	f.engine.Refresh(context.Background())
	require.Equal(t, 2, f.scheduler.arms)
}
