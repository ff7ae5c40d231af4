package webhook

import (
	"math/rand"
	"time"
)

// retryDelay computes the wait before the given retry (attempt is the number
// of attempts already made, so the first retry gets attempt=1). Exponential:
// base doubled per attempt, capped at maxDelay, then jittered to 50-150% so a
// burst of failures against one endpoint doesn't retry in lockstep.
func retryDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			d = maxDelay
			break
		}
	}
	if d > maxDelay {
		d = maxDelay
	}

	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(d) * jitter)
}
