package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/jgomezbdk/fixmate/internal/models"
)

const dateLayout = "2006-01-02"

// Bar is one bar of a chart. Pct is scaled to the tallest bar so the chart
// always fills its width.
type Bar struct {
	Label string
	Count int
	Pct   int
}

// Row is a task with its due date and cost coerced to typed values.
// A nil Due or Cost means the stored string did not parse.
type Row struct {
	Title     string
	Category  string
	Due       *time.Time
	Cost      *float64
	Completed bool
}

func (r Row) DueLabel() string {
	if r.Due == nil {
		return "—"
	}
	return r.Due.Format(dateLayout)
}

func (r Row) CostLabel() string {
	if r.Cost == nil {
		return "—"
	}
	return strconv.FormatFloat(*r.Cost, 'f', 2, 64)
}

// Summary is the full analytics result for one user.
type Summary struct {
	Total     int
	Completed int
	Pending   int

	// Cost aggregates cover only rows with a parseable cost.
	TotalCost   float64
	AvgCost     float64
	CostedTasks int

	StatusBars   []Bar
	CategoryBars []Bar

	Overdue  []Row
	Upcoming []Row
	Rows     []Row

	// Err is an inline message shown when loading failed; the summary is
	// otherwise empty in that case.
	Err string
}

// ErrorSummary is what a failed load renders as.
func ErrorSummary(msg string) Summary {
	return Summary{Err: msg}
}

// Summarize computes the report for a set of tasks relative to now.
// Overdue and upcoming buckets consider pending tasks only; upcoming spans
// today through seven calendar days out.
func Summarize(tasks []models.Task, now time.Time) Summary {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, 7)

	s := Summary{Total: len(tasks)}
	categories := make(map[string]int)

	for _, t := range tasks {
		row := Row{
			Title:     t.Title,
			Category:  t.Category,
			Due:       parseDue(t.DueDate),
			Cost:      parseCost(t.Cost),
			Completed: t.Completed,
		}
		if row.Category == "" {
			row.Category = "Uncategorized"
		}

		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
		if row.Cost != nil {
			s.TotalCost += *row.Cost
			s.CostedTasks++
		}
		categories[row.Category]++

		if !row.Completed && row.Due != nil {
			switch {
			case row.Due.Before(today):
				s.Overdue = append(s.Overdue, row)
			case !row.Due.After(horizon):
				s.Upcoming = append(s.Upcoming, row)
			}
		}

		s.Rows = append(s.Rows, row)
	}

	if s.CostedTasks > 0 {
		s.AvgCost = s.TotalCost / float64(s.CostedTasks)
	}

	sortByDue(s.Overdue)
	sortByDue(s.Upcoming)

	s.StatusBars = scaleBars([]Bar{
		{Label: "Completed", Count: s.Completed},
		{Label: "Pending", Count: s.Pending},
	})
	s.CategoryBars = scaleBars(categoryBars(categories))

	return s
}

func parseDue(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

func parseCost(s string) *float64 {
	if s == "" {
		return nil
	}
	c, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &c
}

func sortByDue(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Due.Equal(*rows[j].Due) {
			return rows[i].Title < rows[j].Title
		}
		return rows[i].Due.Before(*rows[j].Due)
	})
}

func categoryBars(counts map[string]int) []Bar {
	bars := make([]Bar, 0, len(counts))
	for label, count := range counts {
		bars = append(bars, Bar{Label: label, Count: count})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Count != bars[j].Count {
			return bars[i].Count > bars[j].Count
		}
		return bars[i].Label < bars[j].Label
	})
	return bars
}

func scaleBars(bars []Bar) []Bar {
	max := 0
	for _, b := range bars {
		if b.Count > max {
			max = b.Count
		}
	}
	if max == 0 {
		return bars
	}
	for i := range bars {
		bars[i].Pct = bars[i].Count * 100 / max
	}
	return bars
}
