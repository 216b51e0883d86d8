package mediatracker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaTracker_RegistrationIdempotent(t *testing.T) {
	tracker := NewMediaTracker()

	tracker.RegisterWarnMessage("warn-1", "msg-1")
	tracker.RegisterWarnMessage("warn-1", "msg-1")
	tracker.RegisterRequestMessage("req-1", "msg-1")
	tracker.RegisterRequestMessage("req-1", "msg-1")

	// Both keys resolve to the same message without a fetch round-trip issue.
	calls := 0
	fetch := func(messageID string) (string, error) {
		calls++
		assert.Equal(t, "msg-1", messageID)
		return "evidence text", nil
	}

	assert.Equal(t, "evidence text", tracker.ResolveContent("warn-1", "", fetch))
	assert.Equal(t, 1, calls)
}

func TestMediaTracker_EmptyIdentifiersAreNoOps(t *testing.T) {
	tracker := NewMediaTracker()

	tracker.RegisterWarnMessage("", "msg-1")
	tracker.RegisterWarnMessage("warn-1", "")
	tracker.RegisterRequestMessage("", "msg-1")
	tracker.RegisterContent("", "text")
	tracker.RegisterContent("warn-1", "   ")

	assert.Equal(t, "", tracker.ResolveContent("warn-1", "", func(string) (string, error) {
		t.Fatal("fetch should not run when nothing is registered")
		return "", nil
	}))
}

func TestMediaTracker_ResolveContent(t *testing.T) {
	t.Run("CachedContentWins", func(t *testing.T) {
		tracker := NewMediaTracker()
		tracker.RegisterWarnMessage("warn-1", "msg-1")
		tracker.RegisterContent("warn-1", "cached evidence")

		got := tracker.ResolveContent("warn-1", "", func(string) (string, error) {
			t.Fatal("fetch should not run when content is cached")
			return "", nil
		})
		assert.Equal(t, "cached evidence", got)
	})

	t.Run("FetchOnceThenCached", func(t *testing.T) {
		tracker := NewMediaTracker()
		tracker.RegisterWarnMessage("warn-1", "msg-1")

		calls := 0
		fetch := func(string) (string, error) {
			calls++
			return "fetched evidence", nil
		}

		assert.Equal(t, "fetched evidence", tracker.ResolveContent("warn-1", "", fetch))
		assert.Equal(t, "fetched evidence", tracker.ResolveContent("warn-1", "", fetch))
		assert.Equal(t, 1, calls, "second resolve must hit the cache")
	})

	t.Run("FallsBackToRequestKey", func(t *testing.T) {
		tracker := NewMediaTracker()
		tracker.RegisterRequestMessage("req-1", "msg-1")

		got := tracker.ResolveContent("warn-1", "req-1", func(messageID string) (string, error) {
			assert.Equal(t, "msg-1", messageID)
			return "from request mapping", nil
		})
		assert.Equal(t, "from request mapping", got)
	})

	t.Run("FetchFailureYieldsEmpty", func(t *testing.T) {
		tracker := NewMediaTracker()
		tracker.RegisterWarnMessage("warn-1", "msg-1")

		got := tracker.ResolveContent("warn-1", "", func(string) (string, error) {
			return "", fmt.Errorf("message deleted")
		})
		assert.Equal(t, "", got)
	})

	t.Run("UnknownKeysYieldEmpty", func(t *testing.T) {
		tracker := NewMediaTracker()
		assert.Equal(t, "", tracker.ResolveContent("warn-x", "req-x", nil))
	})
}

func TestMediaTracker_ForgetAndDeleteClearsBothKeyspaces(t *testing.T) {
	tracker := NewMediaTracker()
	tracker.RegisterWarnMessage("warn-1", "msg-1")
	tracker.RegisterRequestMessage("req-1", "msg-1")
	tracker.RegisterContent("warn-1", "evidence")

	deleted := []string{}
	tracker.ForgetAndDeleteByWarn("warn-1", func(messageID string) error {
		deleted = append(deleted, messageID)
		return nil
	})
	assert.Equal(t, []string{"msg-1"}, deleted)

	// The request key was cleared too, so a second cleanup is a no-op.
	tracker.ForgetAndDeleteByRequest("req-1", func(messageID string) error {
		t.Fatalf("unexpected second delete for %s", messageID)
		return nil
	})

	// The cached content is gone as well.
	assert.Equal(t, "", tracker.ResolveContent("warn-1", "req-1", nil))
}

func TestMediaTracker_ForgetWithoutDelete(t *testing.T) {
	tracker := NewMediaTracker()
	tracker.RegisterWarnMessage("warn-1", "msg-1")
	tracker.RegisterRequestMessage("req-1", "msg-1")

	tracker.ForgetByWarn("warn-1")

	tracker.ForgetAndDeleteByRequest("req-1", func(string) error {
		t.Fatal("mappings were already forgotten")
		return nil
	})
}

func TestMediaTracker_DeleteFailureIsSwallowed(t *testing.T) {
	tracker := NewMediaTracker()
	tracker.RegisterWarnMessage("warn-1", "msg-1")

	tracker.ForgetAndDeleteByWarn("warn-1", func(string) error {
		return fmt.Errorf("already deleted upstream")
	})

	// In-memory cleanup stands regardless of the delete outcome.
	assert.Equal(t, "", tracker.ResolveContent("warn-1", "", nil))
}

func TestMediaTracker_ConcurrentCleanupDeletesAtMostOnce(t *testing.T) {
	for iter := 0; iter < 50; iter++ {
		tracker := NewMediaTracker()
		tracker.RegisterWarnMessage("warn-1", "msg-1")
		tracker.RegisterRequestMessage("req-1", "msg-1")

		var deletes int64
		del := func(string) error {
			atomic.AddInt64(&deletes, 1)
			return nil
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			tracker.ForgetAndDeleteByWarn("warn-1", del)
		}()
		go func() {
			defer wg.Done()
			tracker.ForgetAndDeleteByRequest("req-1", del)
		}()
		wg.Wait()

		assert.Equal(t, int64(1), atomic.LoadInt64(&deletes))
	}
}

func TestMediaTracker_ForgetContentKeepsMessageMapping(t *testing.T) {
	tracker := NewMediaTracker()
	tracker.RegisterWarnMessage("warn-1", "msg-1")
	tracker.RegisterContent("warn-1", "stale")

	tracker.ForgetContent("warn-1")

	got := tracker.ResolveContent("warn-1", "", func(string) (string, error) {
		return "refetched", nil
	})
	assert.Equal(t, "refetched", got)
}
