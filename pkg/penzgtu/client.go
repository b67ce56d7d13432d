package penzgtu

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/upstream"
)

// ErrNoData is returned when the upstream reports success without a data object
var ErrNoData = errors.New("upstream returned no error but no data")

// Client defines the interface for accessing PenzGTU timetable data
// Every call results in exactly one upstream request; nothing is cached
type Client interface {
	GetTimetableMeta(ctx context.Context) (*models.TimetableMeta, error)
	GetWeekNum(ctx context.Context) (*models.WeekNum, error)
	GetTimetable(ctx context.Context, q models.TimetableQuery) (json.RawMessage, error)
}

// Config holds configuration for the PenzGTU client
// AppKey and AppCode are bound to the PenzGTU Android application
type Config struct {
	URL     string
	AppKey  string
	AppCode string
	Timeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		URL:     upstream.DefaultURL,
		AppKey:  "LLzaP6k6bhDRwf56j31E",
		AppCode: "penzgtuappandroid",
		Timeout: 30 * time.Second,
	}
}
