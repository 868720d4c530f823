// Package summary computes feedback analytics: status counts, the upvote
// leaderboard, a daily creation trend and a tag histogram.
package summary

import (
	"errors"
	"sort"
	"time"

	"feedbackhub/internal/model"
)

const (
	DefaultDays = 30
	MaxDays     = 365
	TopLimit    = 5

	dateLayout = "2006-01-02"
)

// ErrInvalidDays is returned when the trend window is out of range.
var ErrInvalidDays = errors.New("days must be between 1 and 365")

// DayCount is the number of items created on one calendar date.
type DayCount struct {
	Date  string
	Count int
}

type Summary struct {
	Total      int
	Open       int
	InProgress int
	Completed  int
	Rejected   int

	Top                []model.Feedback
	Trend              []DayCount
	StatusDistribution map[model.Status]int
	TagDistribution    map[string]int
}

// TrendMap renders the trend keyed by date.
func (s *Summary) TrendMap() map[string]int {
	out := make(map[string]int, len(s.Trend))
	for _, d := range s.Trend {
		out[d.Date] = d.Count
	}
	return out
}

// ValidateDays checks the trend window length.
func ValidateDays(days int) error {
	if days < 1 || days > MaxDays {
		return ErrInvalidDays
	}
	return nil
}

// Build aggregates rows into a Summary. now fixes "today" and its location;
// the trend covers the days calendar days ending today, oldest first. top is
// re-sorted by upvotes descending, then newest first, then id, and cut to
// TopLimit.
func Build(now time.Time, days int, rows []model.FeedbackStat, top []model.Feedback) (*Summary, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	s := &Summary{
		Total:              len(rows),
		StatusDistribution: make(map[model.Status]int, len(model.Statuses)),
		TagDistribution:    make(map[string]int),
	}
	for _, st := range model.Statuses {
		s.StatusDistribution[st] = 0
	}

	s.Trend = trendWindow(now, days)
	index := make(map[string]int, days)
	for i, d := range s.Trend {
		index[d.Date] = i
	}

	loc := now.Location()
	for _, row := range rows {
		if _, known := s.StatusDistribution[row.Status]; known {
			s.StatusDistribution[row.Status]++
		}
		if i, ok := index[row.CreatedAt.In(loc).Format(dateLayout)]; ok {
			s.Trend[i].Count++
		}
		for _, tag := range model.SplitTags(row.Tags) {
			s.TagDistribution[tag]++
		}
	}

	s.Open = s.StatusDistribution[model.StatusOpen]
	s.InProgress = s.StatusDistribution[model.StatusInProgress]
	s.Completed = s.StatusDistribution[model.StatusCompleted]
	s.Rejected = s.StatusDistribution[model.StatusRejected]
	s.Top = rankTop(top)

	return s, nil
}

func trendWindow(now time.Time, days int) []DayCount {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := make([]DayCount, days)
	for i := 0; i < days; i++ {
		out[i].Date = today.AddDate(0, 0, i-days+1).Format(dateLayout)
	}
	return out
}

func rankTop(items []model.Feedback) []model.Feedback {
	ranked := make([]model.Feedback, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.UpvoteCount != b.UpvoteCount {
			return a.UpvoteCount > b.UpvoteCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if len(ranked) > TopLimit {
		ranked = ranked[:TopLimit]
	}
	return ranked
}
