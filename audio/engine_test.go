package audio

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/beat-buddy/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOfflineEngine(t *testing.T, cfg *AudioConfig) (*Engine, *OfflineOutput) {
	t.Helper()
	out := NewOfflineOutput()
	e := NewEngine(cfg,
		WithOutputFactory(OfflineFactory(out)),
		WithRandSource(rand.New(rand.NewSource(1))),
		WithLogger(quietLogger()),
	)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(e.Stop)
	return e, out
}

// TestAudioEngineStartStop verifies engine lifecycle
func TestAudioEngineStartStop(t *testing.T) {
	e, _ := newOfflineEngine(t, nil)

	if !e.IsRunning() {
		t.Error("Expected engine to be running after Start()")
	}
	if !e.IsReady() {
		t.Error("Expected engine to be ready with an output")
	}
	if e.Bank() == nil {
		t.Error("Expected voice bank after Start()")
	}
	if err := e.Start(); err == nil {
		t.Error("Expected error on second Start()")
	}

	e.Stop()
	if e.IsRunning() {
		t.Error("Expected engine to be stopped after Stop()")
	}
	// Verify idempotent stop
	e.Stop()
	if e.IsRunning() {
		t.Error("Expected engine to remain stopped after second Stop()")
	}
}

func TestTriggerBeforeStartIsNoop(t *testing.T) {
	out := NewOfflineOutput()
	e := NewEngine(nil, WithOutputFactory(OfflineFactory(out)), WithLogger(quietLogger()))

	if err := e.Trigger(core.VoiceKick, 1.0); err != nil {
		t.Errorf("Trigger before Start = %v, want nil", err)
	}
	if out.Added() != 0 {
		t.Error("Trigger before Start reached the output")
	}
	if _, skipped := e.GetStats(); skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestTriggerInvalidVoice(t *testing.T) {
	e, out := newOfflineEngine(t, nil)
	err := e.Trigger(core.Voice(42), 1.0)
	if !errors.Is(err, core.ErrInvalidVoice) {
		t.Errorf("Trigger(42) err = %v, want ErrInvalidVoice", err)
	}
	if out.Added() != 0 {
		t.Error("invalid trigger reached the output")
	}
}

func TestTriggerRendersScaledBuffer(t *testing.T) {
	e, out := newOfflineEngine(t, nil)

	if err := e.Trigger(core.VoiceKick, 0.5); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	ref, _ := e.Bank().Buffer(core.VoiceKick)
	frames := out.Render(len(ref))

	for _, i := range []int{1, 50, 1000, len(ref) - 1} {
		want := ref[i] * 0.5
		if math.Abs(frames[i][0]-want) > 1e-9 || math.Abs(frames[i][1]-want) > 1e-9 {
			t.Errorf("frame %d = %v, want %f on both channels", i, frames[i], want)
		}
	}

	out.Render(1024)
	if out.Active() != 0 {
		t.Errorf("Active = %d after full playback, want 0", out.Active())
	}
}

func TestOverlappingTriggersMix(t *testing.T) {
	e, out := newOfflineEngine(t, nil)

	_ = e.Trigger(core.VoiceKick, 1.0)
	_ = e.Trigger(core.VoiceKick, 1.0)
	if out.Active() != 2 {
		t.Fatalf("Active = %d, want 2 independent plays", out.Active())
	}

	ref, _ := e.Bank().Buffer(core.VoiceKick)
	frames := out.Render(200)
	if math.Abs(frames[100][0]-2*ref[100]) > 1e-9 {
		t.Errorf("mixed frame = %f, want %f", frames[100][0], 2*ref[100])
	}
}

func TestVoiceGainApplied(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.VoiceGains[core.VoiceTom1] = 0.25
	e, out := newOfflineEngine(t, cfg)

	_ = e.Trigger(core.VoiceTom1, 1.0)
	ref, _ := e.Bank().Buffer(core.VoiceTom1)
	frames := out.Render(20)
	if math.Abs(frames[10][0]-ref[10]*0.25) > 1e-9 {
		t.Errorf("frame = %f, want %f", frames[10][0], ref[10]*0.25)
	}

	if err := e.SetVoiceGain(core.VoiceTom1, 1.0); err != nil {
		t.Fatal(err)
	}
	if e.VoiceGain(core.VoiceTom1) != 1.0 {
		t.Error("SetVoiceGain not applied")
	}
	if err := e.SetVoiceGain(core.VoiceCount, 1.0); err == nil {
		t.Error("expected error for invalid voice")
	}
	if err := e.SetVoiceGain(core.VoiceTom1, -0.5); err == nil {
		t.Error("expected error for negative gain")
	}
	if e.VoiceGain(core.VoiceTom1) != 1.0 {
		t.Error("rejected gain was stored")
	}
}

func TestRestartClearsSilentMode(t *testing.T) {
	out := NewOfflineOutput()
	calls := 0
	flaky := func(sr int, buf time.Duration) (Output, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("device busy")
		}
		return out, nil
	}
	e := NewEngine(nil, WithOutputFactory(flaky), WithLogger(quietLogger()))
	t.Cleanup(e.Stop)

	if err := e.Start(); !errors.Is(err, ErrNoAudioOutput) {
		t.Fatalf("first Start err = %v, want ErrNoAudioOutput", err)
	}
	if !e.IsSilent() {
		t.Fatal("expected silent after failed open")
	}
	e.Stop()

	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if e.IsSilent() || !e.IsReady() {
		t.Error("engine stayed silent after the device came back")
	}
	if err := e.Trigger(core.VoiceKick, 1.0); err != nil {
		t.Fatal(err)
	}
	if out.Added() != 1 {
		t.Errorf("Added = %d, want 1", out.Added())
	}
}

func TestZeroGainIsSilent(t *testing.T) {
	e, out := newOfflineEngine(t, nil)
	_ = e.Trigger(core.VoiceSnare, 0)
	for i, f := range out.Render(500) {
		if f != [2]float64{} {
			t.Fatalf("frame %d = %v, want silence", i, f)
		}
	}
}

func TestNoDeviceFallsBackToSilent(t *testing.T) {
	failing := func(int, time.Duration) (Output, error) {
		return nil, errors.New("no device")
	}
	e := NewEngine(nil, WithOutputFactory(failing), WithLogger(quietLogger()))

	err := e.Start()
	if !errors.Is(err, ErrNoAudioOutput) {
		t.Fatalf("Start err = %v, want ErrNoAudioOutput", err)
	}
	if !e.IsRunning() || !e.IsSilent() || e.IsReady() {
		t.Error("expected running silent engine")
	}
	if err := e.Trigger(core.VoiceKick, 1.0); err != nil {
		t.Errorf("silent Trigger = %v, want nil", err)
	}
	e.Stop()
}

func TestDisabledConfigIsSilent(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Enabled = false
	opened := false
	factory := func(int, time.Duration) (Output, error) {
		opened = true
		return NewOfflineOutput(), nil
	}
	e := NewEngine(cfg, WithOutputFactory(factory), WithLogger(quietLogger()))
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if opened {
		t.Error("disabled engine opened an output")
	}
	if !e.IsSilent() {
		t.Error("expected silent mode")
	}
}

func TestConcurrentTriggers(t *testing.T) {
	e, out := newOfflineEngine(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v core.Voice) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = e.Trigger(v, 0.7)
			}
		}(core.Voice(i))
	}
	wg.Wait()

	if out.Added() != 200 {
		t.Errorf("Added = %d, want 200", out.Added())
	}
	if played, _ := e.GetStats(); played != 200 {
		t.Errorf("played = %d, want 200", played)
	}
}

func TestStopClosesOutput(t *testing.T) {
	e, out := newOfflineEngine(t, nil)
	e.Stop()

	if err := e.Trigger(core.VoiceKick, 1.0); err != nil {
		t.Errorf("Trigger after Stop = %v, want nil", err)
	}
	if out.Added() != 0 {
		t.Error("Trigger after Stop reached the output")
	}
}
