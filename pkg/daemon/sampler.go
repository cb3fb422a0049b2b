package daemon

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/events"
	"github.com/charlie0129/smcd/pkg/smc"
)

// samplerSet runs one cron job per configured sampler. Each run reads the
// key and publishes a key.sampled event.
type samplerSet struct {
	smc *smc.AppleSMC
	hub *events.EventHub

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[config.Sampler]cron.EntryID
}

func newSamplerSet(c *smc.AppleSMC, hub *events.EventHub) *samplerSet {
	return &samplerSet{
		smc: c,
		hub: hub,
		cron: cron.New(
			cron.WithParser(config.ScheduleParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		entries: make(map[config.Sampler]cron.EntryID),
	}
}

// apply makes the running jobs match samplers. Unchanged samplers keep
// their schedule position.
func (s *samplerSet) apply(samplers []config.Sampler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[config.Sampler]struct{}, len(samplers))
	for _, sp := range samplers {
		wanted[sp] = struct{}{}
	}

	for sp, id := range s.entries {
		if _, ok := wanted[sp]; !ok {
			s.cron.Remove(id)
			delete(s.entries, sp)
			logrus.WithFields(logrus.Fields{
				"key":      sp.Key,
				"schedule": sp.Schedule,
			}).Info("sampler removed")
		}
	}

	for sp := range wanted {
		if _, ok := s.entries[sp]; ok {
			continue
		}
		sp := sp
		id, err := s.cron.AddFunc(sp.Schedule, func() { s.sample(sp.Key) })
		if err != nil {
			logrus.WithError(err).WithField("key", sp.Key).Errorf("invalid sampler schedule %q", sp.Schedule)
			continue
		}
		s.entries[sp] = id
		logrus.WithFields(logrus.Fields{
			"key":      sp.Key,
			"schedule": sp.Schedule,
		}).Info("sampler added")
	}
}

// len returns the number of active samplers.
func (s *samplerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *samplerSet) start() {
	s.cron.Start()
}

func (s *samplerSet) stop() context.Context {
	return s.cron.Stop()
}

func (s *samplerSet) sample(key string) {
	ev := events.KeySampledEvent{
		Key: key,
		Ts:  time.Now().Unix(),
	}

	v, err := s.smc.Read(key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("sampling failed")
		ev.Error = err.Error()
	} else {
		logrus.WithFields(logrus.Fields{
			"key": key,
			"val": v.Bytes,
		}).Debug("sampled key")
		ev.Hex = hex.EncodeToString(v.Bytes)
	}

	s.hub.Publish(events.KeySampled, ev)
}
