package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/blueblud7/dailyYoutubeSummary/internal/bot"
	"github.com/blueblud7/dailyYoutubeSummary/internal/config"
	"github.com/blueblud7/dailyYoutubeSummary/internal/services"
)

// Scheduler drives the recurring jobs: morning collection, daily report
// delivery and the Monday weekly report. Jobs that are still running when
// their next tick arrives skip that tick instead of stacking.
type Scheduler struct {
	cron      *cron.Cron
	collector *services.Collector
	reports   *services.ReportService
	bot       *bot.Bot
	sources   *config.Sources
	daysBack  int
}

func New(collector *services.Collector, reports *services.ReportService, b *bot.Bot, sources *config.Sources, daysBack int) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if daysBack <= 0 {
		daysBack = 1
	}
	return &Scheduler{
		cron:      c,
		collector: collector,
		reports:   reports,
		bot:       b,
		sources:   sources,
		daysBack:  daysBack,
	}
}

// Register wires the cron specs from config. Returns an error on the first
// invalid spec so a bad deployment fails at startup, not at 6am.
func (s *Scheduler) Register(cfg *config.Config) error {
	if _, err := s.cron.AddFunc(cfg.CollectCron, s.runCollection); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cfg.DailyReportCron, s.runDailyReport); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cfg.WeeklyReportCron, s.runWeeklyReport); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Scheduler started")
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runCollection() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Minute)
	defer cancel()

	since := time.Now().AddDate(0, 0, -s.daysBack)
	result, err := s.collector.Run(ctx, s.sources.ChannelIDs(), s.sources.KeywordList(), since)
	if err != nil {
		log.Printf("Scheduled collection failed: %v", err)
		return
	}
	log.Printf("Scheduled collection: %d videos, %d opinions", result.VideosCollected, result.OpinionsScored)
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rep, err := s.reports.Daily(ctx, time.Now())
	if err != nil {
		log.Printf("Scheduled daily report failed: %v", err)
		return
	}
	if s.bot != nil {
		s.bot.Push(rep)
	}
}

func (s *Scheduler) runWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rep, err := s.reports.Weekly(ctx, time.Now())
	if err != nil {
		log.Printf("Scheduled weekly report failed: %v", err)
		return
	}
	if s.bot != nil {
		s.bot.Push(rep)
	}
}
