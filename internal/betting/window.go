package betting

import (
	"fmt"
	"time"

	"github.com/yourusername/trader-arena/internal/models"
)

// TimeUntilClose returns the whole seconds left in the betting window, zero
// when the window has passed or no close time is set.
func TimeUntilClose(pool *models.Pool, now time.Time) int64 {
	closesAt, ok := pool.ClosesAt()
	if !ok {
		return 0
	}
	remaining := closesAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// FormatTimeRemaining renders seconds as "2h 30m", "45m", "30s" or "Closed".
func FormatTimeRemaining(seconds int64) string {
	if seconds <= 0 {
		return "Closed"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatOdds renders odds as a multiplier, e.g. "1.67x".
func FormatOdds(odds float64) string {
	return fmt.Sprintf("%.2fx", odds)
}
