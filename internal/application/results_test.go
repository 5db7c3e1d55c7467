package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

func textCall(text string) SubmitFunc {
	return func(context.Context) (domain.Payload, error) {
		return domain.TextPayload{Text: text}, nil
	}
}

func gatedCall(release <-chan struct{}, payload domain.Payload, err error) SubmitFunc {
	return func(context.Context) (domain.Payload, error) {
		<-release
		return payload, err
	}
}

func TestSubmitPrependsProcessingEntryAndSelectsIt(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	release := make(chan struct{})
	store.Submit("first.png", gatedCall(release, domain.TextPayload{Text: "old"}, nil))
	close(release)
	store.Wait()

	gate := make(chan struct{})
	id := store.Submit("second.png", gatedCall(gate, domain.TextPayload{Text: "new"}, nil))

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 0, snap.Selected)
	assert.Equal(t, id, snap.Entries[0].ID)
	assert.Equal(t, "second.png", snap.Entries[0].Name)
	assert.Equal(t, domain.StatusProcessing, snap.Entries[0].Status)
	assert.Equal(t, domain.StatusSuccess, snap.Entries[1].Status)

	close(gate)
	store.Wait()

	snap = store.Snapshot()
	assert.Equal(t, domain.StatusSuccess, snap.Entries[0].Status)
}

func TestConcurrentSubmissionsResolveByIDInAnyOrder(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	releaseA := make(chan struct{})
	releaseB := make(chan struct{})

	idA := store.Submit("a.png", gatedCall(releaseA, domain.TextPayload{Text: "text from a"}, nil))
	idB := store.Submit("b.png", gatedCall(releaseB, domain.TextPayload{Text: "text from b"}, nil))

	// The older submission finishes last; each result must land on its own
	// entry, not on whichever entry sits at the submission index.
	close(releaseB)
	close(releaseA)
	store.Wait()

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, idB, snap.Entries[0].ID)
	assert.Equal(t, idA, snap.Entries[1].ID)

	byID := map[domain.EntryID]domain.Entry{}
	for _, e := range snap.Entries {
		require.True(t, e.Resolved())
		byID[e.ID] = e
	}
	require.Equal(t, domain.StatusSuccess, byID[idA].Status)
	require.Equal(t, domain.StatusSuccess, byID[idB].Status)
	assert.Equal(t, domain.TextPayload{Text: "text from a"}, byID[idA].Payload)
	assert.Equal(t, domain.TextPayload{Text: "text from b"}, byID[idB].Payload)
}

func TestLateCompletionDoesNotStealSelection(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	release := make(chan struct{})
	store.Submit("slow.png", gatedCall(release, domain.TextPayload{Text: "slow"}, nil))
	idFast := store.Submit("fast.png", textCall("fast"))

	close(release)
	store.Wait()

	snap := store.Snapshot()
	active, ok := snap.Active()
	require.True(t, ok)
	assert.Equal(t, idFast, active.ID)
}

func TestFailureIsIsolatedToItsOwnEntry(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	idBad := store.Submit("bad.png", func(context.Context) (domain.Payload, error) {
		return nil, errors.New("Failed to solve equation")
	})
	idGood := store.Submit("good.png", func(context.Context) (domain.Payload, error) {
		return domain.MathPayload{LaTeX: "x^2", Solution: "x = 2"}, nil
	})
	store.Wait()

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 2)

	byID := map[domain.EntryID]domain.Entry{}
	for _, e := range snap.Entries {
		byID[e.ID] = e
	}
	assert.Equal(t, domain.StatusError, byID[idBad].Status)
	assert.Equal(t, "Failed to solve equation", byID[idBad].Err)
	assert.Nil(t, byID[idBad].Payload)
	assert.Equal(t, domain.StatusSuccess, byID[idGood].Status)
	assert.Empty(t, byID[idGood].Err)
}

func TestTextPayloadWordCount(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	store.Submit("scan.png", textCall("Hello World"))
	store.Wait()

	active, ok := store.Snapshot().Active()
	require.True(t, ok)
	text, isText := active.Payload.(domain.TextPayload)
	require.True(t, isText)
	assert.Equal(t, 2, text.WordCount())
}

func TestSelectOutOfRangeIsNoOp(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	store.Submit("a.png", textCall("a"))
	store.Submit("b.png", textCall("b"))
	store.Wait()

	store.Select(1)
	assert.Equal(t, 1, store.Snapshot().Selected)

	store.Select(5)
	assert.Equal(t, 1, store.Snapshot().Selected)

	store.Select(-1)
	assert.Equal(t, 1, store.Snapshot().Selected)
}

func TestDeleteClampsSelectionToShrunkCollection(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	store.Submit("a.png", textCall("a"))
	store.Submit("b.png", textCall("b"))
	store.Submit("c.png", textCall("c"))
	store.Wait()

	// After three submissions the first entry sits at the bottom of the
	// newest-first order.
	snap := store.Snapshot()
	oldest := snap.Entries[2]

	store.Select(2)
	require.NoError(t, store.Delete(oldest.ID))

	snap = store.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 1, snap.Selected)
}

func TestDeleteOnlyEntryLeavesEmptyState(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	id := store.Submit("only.png", textCall("x"))
	store.Wait()

	require.NoError(t, store.Delete(id))

	snap := store.Snapshot()
	assert.True(t, snap.Empty())
	assert.Equal(t, 0, snap.Selected)
	_, ok := snap.Active()
	assert.False(t, ok)
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	err := store.Delete("no-such-entry")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSubmitAndDeletePreserveCount(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	var ids []domain.EntryID
	for i := 0; i < 5; i++ {
		ids = append(ids, store.Submit("doc.pdf", textCall("ok")))
	}
	store.Wait()

	require.NoError(t, store.Delete(ids[1]))
	require.NoError(t, store.Delete(ids[3]))

	assert.Len(t, store.Snapshot().Entries, 3)
}

func TestResolveAfterDeleteIsDropped(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	release := make(chan struct{})
	id := store.Submit("gone.png", gatedCall(release, domain.TextPayload{Text: "late"}, nil))
	require.NoError(t, store.Delete(id))

	close(release)
	store.Wait()

	assert.True(t, store.Snapshot().Empty())
}

func TestCloseDiscardsLateResults(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)

	release := make(chan struct{})
	store.Submit("late.png", gatedCall(release, domain.TextPayload{Text: "late"}, nil))

	store.Close()
	close(release)
	store.Wait()

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, domain.StatusProcessing, snap.Entries[0].Status)
}

func TestLoadHistoryEntriesArriveInSuccessState(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	fetch := func(context.Context) ([]domain.HistoryRecord, error) {
		return []domain.HistoryRecord{
			{ID: "h1", TaskType: "ocr", Input: "scan-1.png", Output: "first page", Timestamp: time.Now()},
			{ID: "h2", TaskType: "ocr", Input: "scan-2.png", Output: "second page", Timestamp: time.Now()},
		}, nil
	}

	require.NoError(t, store.LoadHistory(context.Background(), fetch, ""))

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 0, snap.Selected)
	for _, e := range snap.Entries {
		assert.Equal(t, domain.StatusSuccess, e.Status)
		assert.Empty(t, e.Err)
		require.IsType(t, domain.TextPayload{}, e.Payload)
	}
	assert.Equal(t, domain.EntryID("h1"), snap.Entries[0].ID)
	assert.Equal(t, "scan-1.png", snap.Entries[0].Name)
}

func TestLoadHistoryFocusSelectsNamedEntry(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	fetch := func(context.Context) ([]domain.HistoryRecord, error) {
		return []domain.HistoryRecord{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}}, nil
	}

	require.NoError(t, store.LoadHistory(context.Background(), fetch, "h3"))
	assert.Equal(t, 2, store.Snapshot().Selected)

	require.NoError(t, store.LoadHistory(context.Background(), fetch, "missing"))
	assert.Equal(t, 0, store.Snapshot().Selected)
}

func TestLoadHistoryFailureLeavesEmptyCollection(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	store.Submit("stale.png", textCall("stale"))
	store.Wait()

	fetch := func(context.Context) ([]domain.HistoryRecord, error) {
		return nil, errors.New("backend unreachable")
	}

	err := store.LoadHistory(context.Background(), fetch, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch history")
	assert.True(t, store.Snapshot().Empty())
}

func TestOnChangeObserverSeesEveryMutation(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	var snaps []ResultSnapshot
	store.SetOnChange(func(s ResultSnapshot) { snaps = append(snaps, s) })

	id := store.Submit("a.png", textCall("a"))
	store.Wait()
	require.NoError(t, store.Delete(id))

	require.Len(t, snaps, 3)
	assert.Equal(t, domain.StatusProcessing, snaps[0].Entries[0].Status)
	assert.Equal(t, domain.StatusSuccess, snaps[1].Entries[0].Status)
	assert.True(t, snaps[2].Empty())
}

func TestObserverSnapshotsArriveInMutationOrder(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)
	defer store.Close()

	var resolvedCounts []int
	store.SetOnChange(func(s ResultSnapshot) {
		n := 0
		for _, e := range s.Entries {
			if e.Resolved() {
				n++
			}
		}
		resolvedCounts = append(resolvedCounts, n)
	})

	release := make(chan struct{})
	for i := 0; i < 8; i++ {
		store.Submit("batch.png", gatedCall(release, domain.TextPayload{Text: "x"}, nil))
	}
	close(release)
	store.Wait()

	// Eight submit notifications followed by eight resolutions. Delivery in
	// mutation order means the resolved count never goes backwards, no
	// matter which goroutine wins the unlock.
	require.Len(t, resolvedCounts, 16)
	for i := 1; i < len(resolvedCounts); i++ {
		assert.GreaterOrEqual(t, resolvedCounts[i], resolvedCounts[i-1])
	}
	assert.Equal(t, 8, resolvedCounts[len(resolvedCounts)-1])
}

func TestResolutionObservingCloseIsDropped(t *testing.T) {
	t.Parallel()

	store := NewResultStore(nil)

	id := store.Submit("late.png", func(ctx context.Context) (domain.Payload, error) {
		<-ctx.Done()
		return domain.TextPayload{Text: "late"}, nil
	})
	store.Close()
	store.Wait()

	// The call resolved strictly after Close; the patch must be dropped.
	snap := store.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, id, snap.Entries[0].ID)
	assert.Equal(t, domain.StatusProcessing, snap.Entries[0].Status)
}
