package indexer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Interval bounds accepted by the service.
const (
	MinInterval = 5 * time.Minute
	MaxInterval = 24 * time.Hour
)

// Schedule runs an indexer periodically. Interval is an XSD dayTimeDuration
// of the form P[nD][T[nH][nM]], e.g. PT15M or PT2H.
type Schedule struct {
	Interval  string
	StartTime *time.Time
}

// NewSchedule validates interval and returns a schedule starting at start
// (nil means now).
func NewSchedule(interval string, start *time.Time) (*Schedule, error) {
	s := &Schedule{Interval: interval, StartTime: start}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var dayTimeDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?)?$`)

// ParseInterval converts a dayTimeDuration to a time.Duration.
func ParseInterval(s string) (time.Duration, error) {
	m := dayTimeDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return 0, faults.Validationf("schedule: interval %q is not of the form P[nD][T[nH][nM]]", s)
	}
	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, faults.Validationf("schedule: interval %q: %v", s, err)
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

func (s *Schedule) Validate() error {
	d, err := ParseInterval(s.Interval)
	if err != nil {
		return err
	}
	if d < MinInterval || d > MaxInterval {
		return faults.Validationf("schedule: interval %s must be between %s and %s", s.Interval, MinInterval, MaxInterval)
	}
	return nil
}

func (s *Schedule) ToDict() map[string]any {
	base := map[string]any{"interval": s.Interval}
	if s.StartTime != nil {
		base["startTime"] = s.StartTime.UTC().Format(time.RFC3339Nano)
	}
	return wire.Finish(base, nil)
}

func LoadSchedule(data any) (*Schedule, error) {
	f, err := wire.Load("schedule", data)
	if err != nil {
		return nil, err
	}
	s := &Schedule{Interval: f.String("interval"), StartTime: f.Time("start_time")}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return s, s.Validate()
}
