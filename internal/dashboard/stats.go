// Package dashboard aggregates completed interviews into the dashboard summary.
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
)

// RecentLimit is the number of interviews listed under recent activity.
const RecentLimit = 5

const week = 7 * 24 * time.Hour

// Stat is one headline card.
type Stat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
}

// Progress is the average score of one category.
type Progress struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Activity is one recent interview.
type Activity struct {
	Title string `json:"title"`
	Time  string `json:"time"`
	Score string `json:"score"`
	Icon  string `json:"icon"`
}

// Summary is the full dashboard payload.
type Summary struct {
	Stats          []Stat     `json:"stats"`
	Progress       []Progress `json:"progress"`
	RecentActivity []Activity `json:"recentActivity"`
}

type categoryStyle struct {
	name  string
	color string
	icon  string
}

var styles = map[interview.Category]categoryStyle{
	interview.CategoryTechnical:     {name: "Technical", color: "emerald", icon: "Brain"},
	interview.CategoryBehavioral:    {name: "Behavioral", color: "teal", icon: "Award"},
	interview.CategorySystemDesign:  {name: "System Design", color: "green", icon: "Target"},
	interview.CategoryCommunication: {name: "Communication", color: "lime", icon: "Brain"},
}

// Build computes the dashboard summary as of now. The input order does not
// matter.
func Build(interviews []interview.CompletedInterview, now time.Time) Summary {
	sorted := make([]interview.CompletedInterview, len(interviews))
	copy(sorted, interviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	oneWeekAgo := now.Add(-week)
	twoWeeksAgo := now.Add(-2 * week)

	var thisWeek, lastWeek []interview.CompletedInterview
	for _, iv := range sorted {
		switch {
		case !iv.CreatedAt.Before(oneWeekAgo):
			thisWeek = append(thisWeek, iv)
		case !iv.CreatedAt.Before(twoWeeksAgo):
			lastWeek = append(lastWeek, iv)
		}
	}

	scoreDiff := averageScore(thisWeek) - averageScore(lastWeek)
	sign := ""
	if scoreDiff >= 0 {
		sign = "+"
	}
	streak := Streak(sorted, now)
	streakNote := "Start today!"
	if streak > 0 {
		streakNote = "Keep it up!"
	}

	summary := Summary{
		Stats: []Stat{
			{
				Label:  "Total Interviews",
				Value:  fmt.Sprint(len(sorted)),
				Change: fmt.Sprintf("+%d this week", len(thisWeek)),
				Icon:   "Mic",
				Color:  "emerald",
			},
			{
				Label:  "Questions Practiced",
				Value:  fmt.Sprint(totalQuestions(sorted)),
				Change: fmt.Sprintf("+%d this week", totalQuestions(thisWeek)),
				Icon:   "Brain",
				Color:  "teal",
			},
			{
				Label:  "Average Score",
				Value:  fmt.Sprintf("%d%%", averageScore(sorted)),
				Change: fmt.Sprintf("%s%d%% improvement", sign, scoreDiff),
				Icon:   "TrendingUp",
				Color:  "green",
			},
			{
				Label:  "Day Streak",
				Value:  fmt.Sprint(streak),
				Change: streakNote,
				Icon:   "Zap",
				Color:  "lime",
			},
		},
		Progress:       make([]Progress, 0, len(interview.Categories)),
		RecentActivity: make([]Activity, 0, RecentLimit),
	}

	for _, cat := range interview.Categories {
		var inCat []interview.CompletedInterview
		for _, iv := range sorted {
			if iv.Category == cat {
				inCat = append(inCat, iv)
			}
		}
		style := styles[cat]
		summary.Progress = append(summary.Progress, Progress{
			Name:  style.name,
			Value: averageScore(inCat),
			Color: style.color,
		})
	}

	for i, iv := range sorted {
		if i == RecentLimit {
			break
		}
		icon := "Brain"
		if style, ok := styles[iv.Category]; ok {
			icon = style.icon
		}
		summary.RecentActivity = append(summary.RecentActivity, Activity{
			Title: iv.Title,
			Time:  RelativeTime(iv.CreatedAt, now),
			Score: fmt.Sprintf("%d%%", iv.Score),
			Icon:  icon,
		})
	}
	return summary
}

func totalQuestions(interviews []interview.CompletedInterview) int {
	total := 0
	for _, iv := range interviews {
		total += iv.QuestionCount
	}
	return total
}

// averageScore is the rounded mean score, 0 when empty.
func averageScore(interviews []interview.CompletedInterview) int {
	if len(interviews) == 0 {
		return 0
	}
	sum := 0
	for _, iv := range interviews {
		sum += iv.Score
	}
	return int(math.Floor(float64(sum)/float64(len(interviews)) + 0.5))
}

// Streak counts consecutive calendar days with at least one interview,
// ending today or yesterday in now's location.
func Streak(interviews []interview.CompletedInterview, now time.Time) int {
	if len(interviews) == 0 {
		return 0
	}
	loc := now.Location()
	seen := make(map[time.Time]bool, len(interviews))
	days := make([]time.Time, 0, len(interviews))
	for _, iv := range interviews {
		d := day(iv.CreatedAt.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := day(now)
	if !days[0].Equal(today) && !days[0].Equal(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RelativeTime renders t relative to now, e.g. "5 min ago" or "2 days ago".
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case hours == 1:
		return "1 hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	case days == 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
