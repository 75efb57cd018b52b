package gesture

import "testing"

func TestPullBelowThresholdDoesNothing(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(0, 100)
	p.Move(0, 160)
	if d := p.State().Distance; d != 60 {
		t.Fatalf("distance = %v, want 60", d)
	}
	if p.Release() {
		t.Fatal("release below threshold triggered a refresh")
	}
	st := p.State()
	if st.Distance != 0 || st.Pulling || st.Refreshing {
		t.Fatalf("state after short release = %+v, want zeroed", st)
	}
}

func TestPullPastThresholdRefreshesOnce(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(0, 100)
	p.Move(0, 300)
	if d := p.State().Distance; d != MaxPullDistance {
		t.Fatalf("distance = %v, want clamp at %v", d, MaxPullDistance)
	}
	if !p.Release() {
		t.Fatal("release past threshold did not trigger a refresh")
	}
	st := p.State()
	if !st.Refreshing || st.Distance != PullThreshold {
		t.Fatalf("state during refresh = %+v", st)
	}

	// further pulls are ignored while the refresh is in flight
	p.Start(0, 100)
	p.Move(0, 300)
	if p.Release() {
		t.Fatal("pull during refresh triggered a second refresh")
	}

	p.Settle()
	clock.fire()
	st = p.State()
	if st.Refreshing || st.Distance != 0 {
		t.Fatalf("state after settle = %+v, want cleared", st)
	}
}

func TestPullOnlyArmsAtTop(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(40, 100)
	p.Move(40, 300)
	if p.State().Pulling {
		t.Fatal("pull armed while scrolled down")
	}
	if p.Release() {
		t.Fatal("release without a pull triggered a refresh")
	}
}

func TestScrollingAwayCancelsPull(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(0, 100)
	p.Move(0, 190)
	p.Move(30, 200)
	st := p.State()
	if st.Pulling || st.Distance != 0 {
		t.Fatalf("state after scrolling away = %+v, want cancelled", st)
	}
}

func TestUpwardDragCancelsPull(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(0, 100)
	p.Move(0, 190)
	p.Move(0, 80)
	if st := p.State(); st.Distance != 0 || st.Pulling {
		t.Fatalf("state after dragging above start = %+v, want cancelled", st)
	}

	// the rest of the drag cannot re-arm the cancelled pull
	p.Move(0, 200)
	if d := p.State().Distance; d != 0 {
		t.Fatalf("distance = %v after cancel, want 0", d)
	}
	if p.Release() {
		t.Fatal("release after a cancelled pull still refreshed")
	}
}

func TestCancelClearsEverything(t *testing.T) {
	clock := &fakeClock{}
	p := NewPullTrackerWithTimer(clock.factory)

	p.Start(0, 100)
	p.Move(0, 300)
	p.Release()
	p.Settle()
	p.Cancel()

	st := p.State()
	if st.Refreshing || st.Pulling || st.Distance != 0 {
		t.Fatalf("state after cancel = %+v, want zeroed", st)
	}

	// the settle timer from before the cancel must not resurrect state
	clock.fire()
	p.Start(0, 100)
	p.Move(0, 150)
	if !p.State().Pulling {
		t.Fatal("tracker unusable after cancel")
	}
}
