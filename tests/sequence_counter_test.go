// Package tests contains integration tests for sequence counter allocation
package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/Zarcastral/farmops/repository"
	testingutil "github.com/Zarcastral/farmops/testing"
	"github.com/Zarcastral/farmops/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounter(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		seqRepo := repository.NewSequenceCounterRepository(testDB.DB)
		ctx := context.Background()

		t.Run("InitializeCreatesCounters", func(t *testing.T) {
			err := seqRepo.Initialize(ctx, utils.AllSequences)
			require.NoError(t, err)

			for _, name := range utils.AllSequences {
				current, err := seqRepo.Current(ctx, name)
				require.NoError(t, err)
				assert.Equal(t, int64(0), current, "counter %s should start at zero", name)
			}
		})

		t.Run("InitializeIsIdempotent", func(t *testing.T) {
			next, err := seqRepo.Next(ctx, utils.SeqBarangays)
			require.NoError(t, err)
			require.Equal(t, int64(1), next)

			// A second initialization must not reset issued values
			err = seqRepo.Initialize(ctx, utils.AllSequences)
			require.NoError(t, err)

			current, err := seqRepo.Current(ctx, utils.SeqBarangays)
			require.NoError(t, err)
			assert.Equal(t, int64(1), current)
		})

		t.Run("NextIsMonotonic", func(t *testing.T) {
			var previous int64
			for i := 0; i < 10; i++ {
				next, err := seqRepo.Next(ctx, utils.SeqProjects)
				require.NoError(t, err)
				assert.Greater(t, next, previous)
				previous = next
			}
		})

		t.Run("NextCreatesUnknownSequence", func(t *testing.T) {
			next, err := seqRepo.Next(ctx, "greenhouses")
			require.NoError(t, err)
			assert.Equal(t, int64(1), next)
		})

		t.Run("CurrentDoesNotAdvance", func(t *testing.T) {
			next, err := seqRepo.Next(ctx, utils.SeqTeams)
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				current, err := seqRepo.Current(ctx, utils.SeqTeams)
				require.NoError(t, err)
				assert.Equal(t, next, current)
			}
		})

		t.Run("CurrentOfUnknownSequenceIsZero", func(t *testing.T) {
			current, err := seqRepo.Current(ctx, "never_initialized")
			require.NoError(t, err)
			assert.Equal(t, int64(0), current)
		})

		t.Run("EmptyNameRejected", func(t *testing.T) {
			_, err := seqRepo.Next(ctx, "")
			assert.Error(t, err)

			_, err = seqRepo.Current(ctx, "")
			assert.Error(t, err)

			err = seqRepo.Initialize(ctx, []string{""})
			assert.Error(t, err)
		})

		t.Run("ConcurrentNextNeverDuplicates", func(t *testing.T) {
			const workers = 20
			const perWorker = 10

			var mu sync.Mutex
			seen := make(map[int64]bool)

			var wg sync.WaitGroup
			errs := make(chan error, workers*perWorker)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						value, err := seqRepo.Next(ctx, utils.SeqHarvests)
						if err != nil {
							errs <- err
							return
						}
						mu.Lock()
						if seen[value] {
							mu.Unlock()
							errs <- assert.AnError
							return
						}
						seen[value] = true
						mu.Unlock()
					}
				}()
			}

			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err, "concurrent allocation must not fail or duplicate")
			}

			assert.Len(t, seen, workers*perWorker)

			current, err := seqRepo.Current(ctx, utils.SeqHarvests)
			require.NoError(t, err)
			assert.Equal(t, int64(workers*perWorker), current)
		})

		return nil
	})

	require.NoError(t, err)
}
