package pipeline

import (
	"context"
	"time"

	"congressdata/internal/components/telemetry"
	"congressdata/internal/upstream"
)

// UnitRunner runs the units of work of one extractor (a window, an entity, an archive).
// A failed unit is reported and swallowed so the extractor moves on to the next one.
type UnitRunner struct {
	tel    telemetry.API
	policy upstream.RetryPolicy
	sleep  func(ctx context.Context, d time.Duration)

	succeeded int
	failed    int
}

func NewUnitRunner(tel telemetry.API, policy upstream.RetryPolicy) *UnitRunner {
	return &UnitRunner{
		tel:    tel,
		policy: policy,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
			}
		},
	}
}

// Do runs fn under label, retrying as the policy allows. It returns whether the unit
// eventually succeeded.
func (u *UnitRunner) Do(ctx context.Context, label string, fn func(ctx context.Context) (int, error)) bool {
	attempt := 1
	for {
		count, err := fn(ctx)
		if err == nil {
			u.succeeded++
			u.tel.ReportProgress(label, "outcome", "ok", "count", count)
			return true
		}

		class := upstream.Classify(err)
		if ctx.Err() != nil || !u.policy.Allows(class, attempt) {
			u.failed++
			u.tel.ReportProgress(label, "outcome", "error", "class", class.String(), "attempts", attempt, "err", err.Error())
			return false
		}

		u.tel.ReportDebug("retrying unit", label, class.String(), attempt)
		attempt++
		if u.policy.Backoff > 0 {
			u.sleep(ctx, u.policy.Backoff)
		}
	}
}

func (u *UnitRunner) Succeeded() int {
	return u.succeeded
}

func (u *UnitRunner) Failed() int {
	return u.failed
}
