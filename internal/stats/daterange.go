package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of date arguments and configured range bounds.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for bounds that are not YYYY-MM-DD dates.
var ErrInvalidDate = errors.New("invalid date")

// DateRange is a named reporting window covering [Start, End).
type DateRange struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses start and end as YYYY-MM-DD dates in UTC.
func ParseDateRange(name, start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
	}
	if name == "" {
		name = fmt.Sprintf("%s to %s", s.Format(DateLayout), e.Format(DateLayout))
	}
	return DateRange{Name: name, Start: s, End: e}, nil
}

// Empty reports whether no instant can fall inside the range.
func (r DateRange) Empty() bool {
	return !r.End.After(r.Start)
}

// Slug is the range name lowercased with spaces replaced by hyphens, used as
// the base name of exported files.
func (r DateRange) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(r.Name), "-"))
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s [%s, %s)", r.Name, r.Start.Format(DateLayout), r.End.Format(DateLayout))
}
