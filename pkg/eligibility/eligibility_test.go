package eligibility_test

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/eligibility"
	"github.com/agentstation/placement/pkg/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource serves canned lists. When gate is set every call blocks until
// the gate is closed or the context ends.
type fakeSource struct {
	mu    sync.Mutex
	data  map[string][]string
	errs  map[string]error
	calls map[string]int
	gate  chan struct{}
}

func newFakeSource(data map[string][]string) *fakeSource {
	return &fakeSource{data: data, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeSource) EligibleStudentIDs(ctx context.Context, jobID string) ([]string, error) {
	f.mu.Lock()
	f.calls[jobID]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[jobID]; err != nil {
		return nil, err
	}
	return slices.Clone(f.data[jobID]), nil
}

func (f *fakeSource) set(jobID string, ids []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[jobID] = ids
	if err == nil {
		delete(f.errs, jobID)
	} else {
		f.errs[jobID] = err
	}
}

func (f *fakeSource) count(jobID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[jobID]
}

func newCache(t *testing.T, src eligibility.Source) *eligibility.Cache {
	t.Helper()
	c := eligibility.New(src, eligibility.WithLogger(logging.NewNopLogger()))
	t.Cleanup(c.Close)
	return c
}

func TestOverlayTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(map[string][]string{"j1": {"s1", "s2"}})
	c := newCache(t, src)

	ids, err := c.Load(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)

	c.AddStudent("j1", "s3")
	assert.Equal(t, []string{"s1", "s2", "s3"}, c.EligibleIDs("j1"))

	src.set("j1", []string{"s9"}, nil)
	require.NoError(t, c.Refetch(ctx, "j1"))

	baseline, ok := c.Baseline("j1")
	require.True(t, ok)
	assert.Equal(t, []string{"s9"}, baseline)
	assert.Equal(t, []string{"s1", "s2", "s3"}, c.EligibleIDs("j1"), "refetch must not touch the overlay")
}

func TestAddStudentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newCache(t, newFakeSource(map[string][]string{"j1": {"s1"}}))
	_, err := c.Load(ctx, "j1")
	require.NoError(t, err)

	t.Run("member of baseline writes nothing", func(t *testing.T) {
		c.AddStudent("j1", "s1")
		_, ok := c.Overlay("j1")
		assert.False(t, ok)
	})

	t.Run("repeated add keeps one copy", func(t *testing.T) {
		c.AddStudent("j1", "s2")
		c.AddStudent("j1", "s2")
		ids := c.EligibleIDs("j1")
		assert.Equal(t, []string{"s1", "s2"}, ids)
	})
}

func TestRemoveStudentAlwaysWritesOverlay(t *testing.T) {
	ctx := context.Background()
	c := newCache(t, newFakeSource(map[string][]string{"j1": {"s1", "s2"}}))
	_, err := c.Load(ctx, "j1")
	require.NoError(t, err)

	c.RemoveStudent("j1", "nobody")
	overlay, ok := c.Overlay("j1")
	require.True(t, ok)
	assert.Equal(t, []string{"s1", "s2"}, overlay)

	c.RemoveStudent("j1", "s1")
	assert.Equal(t, []string{"s2"}, c.EligibleIDs("j1"))

	t.Run("edits before any fetch start from empty", func(t *testing.T) {
		c.RemoveStudent("j-unfetched", "s1")
		overlay, ok := c.Overlay("j-unfetched")
		assert.True(t, ok)
		assert.Empty(t, overlay)
	})
}

func TestMissStartsOneBackgroundFetch(t *testing.T) {
	src := newFakeSource(map[string][]string{"j1": {"s1"}})
	src.gate = make(chan struct{})
	c := newCache(t, src)

	for range 5 {
		assert.Empty(t, c.EligibleIDs("j1"))
	}
	assert.True(t, c.Loading("j1"))

	loaded := make(chan []string, 1)
	go func() {
		ids, err := c.Load(context.Background(), "j1")
		assert.NoError(t, err)
		loaded <- ids
	}()

	close(src.gate)

	select {
	case ids := <-loaded:
		assert.Equal(t, []string{"s1"}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not return")
	}
	assert.Equal(t, 1, src.count("j1"))
	assert.False(t, c.Loading("j1"))
	assert.Equal(t, []string{"s1"}, c.EligibleIDs("j1"))
}

func TestFetchErrorsAreIsolated(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(map[string][]string{"j2": {"s7"}})
	src.set("j1", nil, errors.New("eligibility service timeout"))
	c := newCache(t, src)

	_, err := c.Load(ctx, "j1")
	require.Error(t, err)
	ids, err := c.Load(ctx, "j2")
	require.NoError(t, err)
	assert.Equal(t, []string{"s7"}, ids)

	assert.EqualError(t, c.Err("j1"), "eligibility service timeout")
	assert.NoError(t, c.Err("j2"))
	assert.Empty(t, c.EligibleIDs("j1"))
	assert.Equal(t, 1, src.count("j1"), "a failed job is not refetched implicitly")

	src.set("j1", []string{"s1"}, nil)
	require.NoError(t, c.Refetch(ctx, "j1"))
	assert.NoError(t, c.Err("j1"))
	assert.Equal(t, []string{"s1"}, c.EligibleIDs("j1"))
}

func TestAvailableToAddExcludesEffectiveList(t *testing.T) {
	ctx := context.Background()
	all := []drives.Student{}
	ids := []string{}
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"} {
		all = append(all, drives.Student{ID: id})
		ids = append(ids, id)
	}

	c := newCache(t, newFakeSource(map[string][]string{"j1": {"s1", "s3"}}))
	_, err := c.Load(ctx, "j1")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for step := range 200 {
		s := ids[rng.Intn(len(ids))]
		if rng.Intn(2) == 0 {
			c.AddStudent("j1", s)
		} else {
			c.RemoveStudent("j1", s)
		}

		effective := c.EligibleIDs("j1")
		available := c.AvailableToAdd("j1", all)
		for _, st := range available {
			require.NotContains(t, effective, st.ID, "step %d", step)
		}
		require.Equal(t, len(all), len(available)+len(effective), "step %d", step)
	}
}

func TestResetDropsLateResults(t *testing.T) {
	src := newFakeSource(map[string][]string{"j1": {"s1"}})
	src.gate = make(chan struct{})
	c := eligibility.New(src, eligibility.WithLogger(logging.NewNopLogger()))

	c.SetActive("j1")
	c.AddStudent("j2", "s5")
	assert.Equal(t, "j1", c.Active())
	assert.True(t, c.Loading("j1"))

	c.Reset()
	assert.Equal(t, "", c.Active())
	assert.False(t, c.Loading("j1"))
	_, ok := c.Overlay("j2")
	assert.False(t, ok)

	close(src.gate)
	c.Close()

	_, ok = c.Baseline("j1")
	assert.False(t, ok, "a fetch started before Reset must not populate the baseline")
}

func TestCloseStopsBlockedFetches(t *testing.T) {
	src := newFakeSource(nil)
	src.gate = make(chan struct{})
	c := eligibility.New(src, eligibility.WithLogger(logging.NewNopLogger()))

	c.SetActive("j1")
	c.EligibleIDs("j2")

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.ErrorIs(t, c.Err("j1"), context.Canceled)

	_, err := c.Load(context.Background(), "j3")
	assert.Error(t, err)
}

func TestOverlayJobs(t *testing.T) {
	c := newCache(t, newFakeSource(nil))
	c.AddStudent("j2", "s1")
	c.RemoveStudent("j1", "s1")
	assert.Equal(t, []string{"j1", "j2"}, c.OverlayJobs())
}

func TestBaselineStaysUntilRefetchOrReset(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(map[string][]string{"j1": {"s1", "s2"}})
	c := newCache(t, src)

	_, err := c.Load(ctx, "j1")
	require.NoError(t, err)

	// The backend changes underneath; the cached baseline must not.
	src.set("j1", []string{"s3"}, nil)
	time.Sleep(20 * time.Millisecond)

	base, ok := c.Baseline("j1")
	require.True(t, ok)
	assert.Equal(t, []string{"s1", "s2"}, base)
	assert.Equal(t, []string{"s1", "s2"}, c.EligibleIDs("j1"))
	assert.Equal(t, 1, src.count("j1"))

	require.NoError(t, c.Refetch(ctx, "j1"))
	base, ok = c.Baseline("j1")
	require.True(t, ok)
	assert.Equal(t, []string{"s3"}, base)

	c.Reset()
	_, ok = c.Baseline("j1")
	assert.False(t, ok)
}
