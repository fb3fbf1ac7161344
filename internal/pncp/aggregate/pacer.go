package aggregate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces upstream requests. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer allows one upstream request per interval with no burst. A
// non-positive interval disables pacing.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
