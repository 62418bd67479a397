package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/modules/notify"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/scheduler"
)

// DailyPipelineJob runs the whole daily cycle: collect fresh data for
// both asset classes, then score both. Collection failures do not stop
// scoring; scoring runs over whatever data the stores hold.
type DailyPipelineJob struct {
	collectors []scheduler.Job
	cryptoSvc  *scoring.Service
	stocksSvc  *scoring.Service
	notifier   *notify.Notifier
	log        zerolog.Logger
}

// NewDailyPipelineJob creates the daily pipeline job
func NewDailyPipelineJob(
	collectors []scheduler.Job,
	cryptoSvc *scoring.Service,
	stocksSvc *scoring.Service,
	notifier *notify.Notifier,
	log zerolog.Logger,
) *DailyPipelineJob {
	return &DailyPipelineJob{
		collectors: collectors,
		cryptoSvc:  cryptoSvc,
		stocksSvc:  stocksSvc,
		notifier:   notifier,
		log:        log.With().Str("job", "daily_pipeline").Logger(),
	}
}

// Name returns the job name
func (j *DailyPipelineJob) Name() string { return "daily_pipeline" }

// Run executes collect then score for both asset classes
func (j *DailyPipelineJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	for _, c := range j.collectors {
		if err := c.Run(); err != nil {
			j.log.Error().Err(err).Str("collector", c.Name()).Msg("Collection failed, scoring continues")
		}
	}

	asOf := time.Now().UTC()
	j.scoreClass(ctx, "crypto", j.cryptoSvc, asOf)
	j.scoreClass(ctx, "stocks", j.stocksSvc, asOf)

	return nil
}

func (j *DailyPipelineJob) scoreClass(ctx context.Context, class string, svc *scoring.Service, asOf time.Time) {
	summary, err := svc.ComputeAll(ctx, asOf)
	if err != nil {
		j.log.Error().Err(err).Str("class", class).Msg("Scoring pass failed")
		j.notifier.Send(ctx, notify.PriorityAlert,
			fmt.Sprintf(":rotating_light: %s scoring pass failed: %v", class, err))
		return
	}

	j.notifier.Send(ctx, notify.PriorityLog, formatSummary(class, summary))

	for _, change := range summary.StatusChanges {
		j.notifier.Send(ctx, notify.PriorityAlert, formatStatusChange(class, change))
	}
}

func formatSummary(class string, s *scoring.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scoring %s: %d scored, %d skipped, %d failed",
		class, s.Date, s.Scored, len(s.Skipped), len(s.Failed))
	if len(s.StatusChanges) > 0 {
		fmt.Fprintf(&b, ", %d status changes", len(s.StatusChanges))
	}
	return b.String()
}

func formatStatusChange(class string, c scoring.StatusChange) string {
	from := "none"
	if c.From != nil {
		from = string(*c.From)
	}
	return fmt.Sprintf(":warning: [%s] %s moved %s -> %s (%s)",
		class, c.Symbol, from, c.To, c.Reason)
}
