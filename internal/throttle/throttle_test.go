package throttle

import (
	"sort"
	"testing"
	"time"
)

func TestLimiter_BurstCollapsesToOneTrailingFire(t *testing.T) {
	t.Parallel()

	l := New(0)
	if l.Wait() != DefaultWait {
		t.Fatalf("wait = %v, want %v", l.Wait(), DefaultWait)
	}

	var scheduled []uint64
	for i := 0; i < 10; i++ {
		seq, ok := l.Touch()
		if !ok {
			t.Fatalf("touch %d did not schedule", i)
		}
		scheduled = append(scheduled, seq)
	}
	if !l.Pending() {
		t.Fatalf("expected a pending change")
	}
	for _, seq := range scheduled[:9] {
		if l.Fire(seq) {
			t.Fatalf("wake-up %d for an older change must not fire", seq)
		}
	}
	last := scheduled[9]
	if !l.Fire(last) {
		t.Fatalf("expected the newest wake-up to propagate")
	}
	if l.Fire(last) {
		t.Fatalf("expected a second fire for the same change to be ignored")
	}

	seq, ok := l.Touch()
	if !ok || seq == last {
		t.Fatalf("expected a new wake-up, got seq=%d ok=%v", seq, ok)
	}
}

type wakeup struct {
	at  time.Duration
	seq uint64
}

// simulate feeds keystrokes at the given offsets into l and delivers every
// scheduled wake-up at its due time. It returns the times at which Fire succeeded.
func simulate(l *Limiter, keystrokes []time.Duration) []time.Duration {
	var pending []wakeup
	var fired []time.Duration
	deliverUntil := func(now time.Duration) {
		sort.Slice(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
		for len(pending) > 0 && pending[0].at <= now {
			w := pending[0]
			pending = pending[1:]
			if l.Fire(w.seq) {
				fired = append(fired, w.at)
			}
		}
	}
	for _, at := range keystrokes {
		deliverUntil(at)
		if seq, ok := l.Touch(); ok {
			pending = append(pending, wakeup{at: at + l.Wait(), seq: seq})
		}
	}
	deliverUntil(time.Hour)
	return fired
}

func TestLimiter_SteadyTypingFiresOnceAfterQuietPeriod(t *testing.T) {
	t.Parallel()

	var keys []time.Duration
	for i := 0; i < 10; i++ {
		keys = append(keys, time.Duration(i)*40*time.Millisecond)
	}
	fired := simulate(New(200*time.Millisecond), keys)
	if len(fired) != 1 {
		t.Fatalf("expected one propagation for the burst, got %v", fired)
	}
	if want := keys[len(keys)-1] + 200*time.Millisecond; fired[0] != want {
		t.Fatalf("propagated at %v, want %v (quiet period after the last keystroke)", fired[0], want)
	}
}

func TestLimiter_SeparateBurstsFireSeparately(t *testing.T) {
	t.Parallel()

	ms := time.Millisecond
	fired := simulate(New(200*ms), []time.Duration{0, 50 * ms, 500 * ms, 550 * ms, 600 * ms})
	if len(fired) != 2 || fired[0] != 250*ms || fired[1] != 800*ms {
		t.Fatalf("unexpected propagation times: %v", fired)
	}
}

func TestLimiter_StaleSequenceIsIgnored(t *testing.T) {
	t.Parallel()

	l := New(DefaultWait)
	seq, _ := l.Touch()
	if l.Fire(seq + 1) {
		t.Fatalf("unexpected fire for unknown sequence")
	}
	if !l.Fire(seq) {
		t.Fatalf("expected fire")
	}
}

func TestLimiter_StopCancelsPending(t *testing.T) {
	t.Parallel()

	l := New(DefaultWait)
	seq, ok := l.Touch()
	if !ok {
		t.Fatalf("expected schedule")
	}
	l.Stop()
	if l.Fire(seq) {
		t.Fatalf("fire after stop must not propagate")
	}
	if _, ok := l.Touch(); ok {
		t.Fatalf("touch after stop must not schedule")
	}
	if l.Pending() {
		t.Fatalf("stopped limiter reports pending")
	}
}
