package daemon

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/events"
)

func TestCronParse(t *testing.T) {
	schedule, err := config.ScheduleParser.Parse("@every 10m")
	if err != nil {
		t.Fatalf("failed to parse cron expression: %v", err)
	}

	next1 := schedule.Next(time.Now())
	next2 := schedule.Next(next1)
	if !next2.After(next1) {
		t.Fatalf("expected next2 to be after next1, got next1=%v next2=%v", next1, next2)
	}
}

func TestSamplerApply(t *testing.T) {
	d, _ := newTestDaemon(t)
	s := d.samplers

	s.apply([]config.Sampler{
		{Key: "TB0T", Schedule: "@every 1m"},
		{Key: "CLWK", Schedule: "@every 5m"},
	})
	if n := s.len(); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}
	ids := make(map[config.Sampler]cron.EntryID)
	for k, v := range s.entries {
		ids[k] = v
	}

	// Keep TB0T, drop CLWK, add ACID.
	s.apply([]config.Sampler{
		{Key: "TB0T", Schedule: "@every 1m"},
		{Key: "ACID", Schedule: "@every 1h"},
	})
	if n := s.len(); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}
	tb0t := config.Sampler{Key: "TB0T", Schedule: "@every 1m"}
	if s.entries[tb0t] != ids[tb0t] {
		t.Errorf("unchanged sampler was rescheduled")
	}
	if _, ok := s.entries[config.Sampler{Key: "CLWK", Schedule: "@every 5m"}]; ok {
		t.Errorf("removed sampler still scheduled")
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("cron entries = %d, want 2", got)
	}

	s.apply([]config.Sampler{{Key: "TB0T", Schedule: "not a schedule"}})
	if n := s.len(); n != 0 {
		t.Errorf("len = %d after invalid schedule, want 0", n)
	}
}

func TestSamplePublishes(t *testing.T) {
	d, _ := newTestDaemon(t)
	ch := d.Events().Subscribe()
	defer d.Events().Unsubscribe(ch)

	d.samplers.sample("TB0T")
	d.samplers.sample("NOPE")

	ok, err := events.DecodeAs[events.KeySampledEvent](<-ch)
	if err != nil {
		t.Fatal(err)
	}
	if ok.Key != "TB0T" || ok.Hex != "801d" || ok.Error != "" {
		t.Errorf("sample = %+v", ok)
	}

	failed, err := events.DecodeAs[events.KeySampledEvent](<-ch)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Key != "NOPE" || failed.Hex != "" || failed.Error == "" {
		t.Errorf("failed sample = %+v", failed)
	}
}
