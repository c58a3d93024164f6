package pipeline

import (
	"context"
	"fmt"
	"time"
)

// ArgTag names a CLI level temporal value an extractor accepts.
type ArgTag string

const (
	TagStartYear ArgTag = "start-year"
	TagEndYear   ArgTag = "end-year"
	TagStartDate ArgTag = "start-date"
	TagEndDate   ArgTag = "end-date"
)

// Args carries the temporal values of a run. Values for tags an extractor did not declare
// are zero.
type Args struct {
	StartYear int
	EndYear   int
	StartDate time.Time
	EndDate   time.Time
}

// Filter keeps only the values matching tags.
func (a Args) Filter(tags []ArgTag) Args {
	var out Args
	for _, tag := range tags {
		switch tag {
		case TagStartYear:
			out.StartYear = a.StartYear
		case TagEndYear:
			out.EndYear = a.EndYear
		case TagStartDate:
			out.StartDate = a.StartDate
		case TagEndDate:
			out.EndDate = a.EndDate
		}
	}
	return out
}

// RunFunc runs one extractor and returns the number of rows it wrote across its tables.
type RunFunc func(ctx context.Context, args Args) (int, error)

// Definition is one registry entry.
type Definition struct {
	Name        string
	Description string
	Args        []ArgTag
	// Requires lists tables written by other extractors that must exist before this one runs.
	Requires []string
	Run      RunFunc
}

func validate(defs []Definition) error {
	seen := map[string]bool{}
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("extractor with empty name")
		}
		if d.Run == nil {
			return fmt.Errorf("extractor %s has no run function", d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("extractor %s registered twice", d.Name)
		}
		seen[d.Name] = true
		for _, tag := range d.Args {
			switch tag {
			case TagStartYear, TagEndYear, TagStartDate, TagEndDate:
			default:
				return fmt.Errorf("extractor %s declares unknown argument %q", d.Name, tag)
			}
		}
	}
	return nil
}
