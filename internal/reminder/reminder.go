// Package reminder posts today's plan on a cron schedule.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"plancal/internal/bot"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/plan"
)

// Digest is the daily job: optionally create today's plan, then post it.
type Digest struct {
	svc       *plan.Service
	sink      bot.Sink
	channelID string
	autoStart bool
}

func NewDigest(svc *plan.Service, sink bot.Sink, channelID string, autoStart bool) *Digest {
	return &Digest{svc: svc, sink: sink, channelID: channelID, autoStart: autoStart}
}

// RunOnce performs one digest run for Service.Today.
func (d *Digest) RunOnce(ctx context.Context) error {
	date := d.svc.Today().Format(model.DateLayout)

	if d.autoStart {
		err := d.svc.StartPlan(ctx, date)
		if err != nil && !errors.Is(err, plan.ErrAlreadyExists) {
			return fmt.Errorf("auto start %s: %w", date, err)
		}
	}
	if d.channelID == "" || d.sink == nil {
		return nil
	}

	day, err := d.svc.ViewPlan(ctx, date)
	var reply bot.Reply
	switch {
	case err == nil:
		reply = bot.Reply{Embed: bot.PlanEmbed(date, day)}
	case errors.Is(err, plan.ErrUnknownDate):
		reply = bot.Text("📅 %s 尚未建立計畫表。", date)
	default:
		return err
	}
	return d.sink.Send(ctx, d.channelID, reply)
}

// Scheduler wraps a cron runner for the digest.
type Scheduler struct {
	cron *cron.Cron
}

// Schedule registers d under the standard 5-field cron expression, evaluated in loc.
func Schedule(ctx context.Context, expr string, loc *time.Location, d *Digest) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(expr, func() {
		started := time.Now()
		if err := d.RunOnce(ctx); err != nil {
			appLog.Error("digest failed", err)
			return
		}
		appLog.Info("digest sent", "elapsed", time.Since(started).String())
	})
	if err != nil {
		return nil, fmt.Errorf("digest schedule %q: %w", expr, err)
	}
	return &Scheduler{cron: c}, nil
}

// Run starts the cron runner and blocks until ctx is canceled and any running
// job has finished.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	appLog.Info("digest scheduler started", "next", s.Next().Format(time.RFC3339))
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// Next is the next scheduled run, zero when the runner has no entries.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
