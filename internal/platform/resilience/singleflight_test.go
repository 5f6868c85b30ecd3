package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesDuplicateFetches(t *testing.T) {
	var g SingleFlight
	var fetches atomic.Int32
	var sharedResults atomic.Int32

	const callers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			out, err, shared := g.Do("players?view=kona_player_info", func() (any, error) {
				fetches.Add(1)
				time.Sleep(20 * time.Millisecond)
				return []byte(`{"players":[]}`), nil
			})
			if err != nil {
				t.Errorf("deduped fetch failed: %v", err)
				return
			}
			if string(out.([]byte)) != `{"players":[]}` {
				t.Errorf("caller got wrong payload: %s", out)
			}
			if shared {
				sharedResults.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected one upstream fetch, got %d", got)
	}
	// One fetch means one owner; everyone else waited on it.
	if got := sharedResults.Load(); got != callers-1 {
		t.Fatalf("expected %d shared results, got %d", callers-1, got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	for _, key := range []string{"players/1", "players/2"} {
		out, err, shared := g.Do(key, func() (any, error) {
			return key, nil
		})
		if err != nil {
			t.Fatalf("fetch %s: %v", key, err)
		}
		if shared {
			t.Fatalf("solo fetch %s reported a shared result", key)
		}
		if out != key {
			t.Fatalf("fetch %s returned %v", key, out)
		}
	}
}

func TestSingleFlight_ErrorReachesWaiters(t *testing.T) {
	var g SingleFlight
	errDown := errors.New("upstream unavailable")
	var fetches atomic.Int32

	const callers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("cards", func() (any, error) {
				fetches.Add(1)
				time.Sleep(20 * time.Millisecond)
				return nil, errDown
			})
			errs[i] = err
		}(i)
	}

	close(start)
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected one upstream fetch, got %d", got)
	}
	for i, err := range errs {
		if !errors.Is(err, errDown) {
			t.Fatalf("caller %d got %v", i, err)
		}
	}
}
