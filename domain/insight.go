package domain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NoInsightsMessage is returned when the owner has no logged outcomes yet.
const NoInsightsMessage = "No completed tasks yet. Update some tasks with actual completion times to see insights!"

// GenerateInsights summarizes prediction accuracy and behavioral patterns
// over one owner's logged tasks. Tasks without an actual time are ignored.
// Statements whose preconditions do not hold are omitted, never placeholders.
func GenerateInsights(tasks []Task) []string {
	logged := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsLogged() {
			logged = append(logged, t)
		}
	}
	if len(logged) == 0 {
		return []string{NoInsightsMessage}
	}

	errors := make([]float64, len(logged))
	ratios := make([]float64, len(logged))
	for i, t := range logged {
		errors[i] = absErr(t)
		ratios[i] = *t.ActualTime / t.TotalAvailableTime * 100
	}
	avgError := stat.Mean(errors, nil)
	avgRatio := stat.Mean(ratios, nil)

	insights := []string{
		fmt.Sprintf("You have completed %d %s.", len(logged), pluralize("task", len(logged))),
		fmt.Sprintf("Average prediction error: %.2f hours", avgError),
		fmt.Sprintf("On average, you use %.1f%% of your available time", avgRatio),
	}

	courseErrors := groupMeans(logged, func(t Task) string { return t.Course }, absErr)
	if len(courseErrors) >= 2 {
		best := pickExtreme(courseErrors, func(a, b float64) bool { return a < b })
		worst := pickExtreme(courseErrors, func(a, b float64) bool { return a > b })
		insights = append(insights,
			fmt.Sprintf("Most accurate predictions are for: %s", best),
			fmt.Sprintf("Less accurate predictions are for: %s", worst),
		)
	}

	typeDurations := groupMeans(logged, func(t Task) string { return t.TaskType }, func(t Task) float64 { return *t.ActualTime })
	if len(typeDurations) >= 2 {
		longest := pickExtreme(typeDurations, func(a, b float64) bool { return a > b })
		shortest := pickExtreme(typeDurations, func(a, b float64) bool { return a < b })
		insights = append(insights,
			fmt.Sprintf("On average, %ss take the longest (%.1f hours)", longest, typeDurations[longest]),
			fmt.Sprintf("while %ss take the shortest (%.1f hours)", shortest, typeDurations[shortest]),
		)
	}

	switch {
	case avgRatio > 90:
		insights = append(insights, "Tip: You're using most of your available time. Consider allocating more buffer time.")
	case avgRatio < 50:
		insights = append(insights, "Tip: You're finishing tasks quickly. You might be able to take on more work.")
	}

	if len(logged) >= 3 {
		recent := append([]Task(nil), logged...)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].CreatedAt.Before(recent[j].CreatedAt)
		})
		recent = recent[len(recent)-3:]
		recentErrors := make([]float64, len(recent))
		for i, t := range recent {
			recentErrors[i] = absErr(t)
		}
		if stat.Mean(recentErrors, nil) < avgError {
			insights = append(insights, "Good news! Your recent tasks are more accurately predicted than earlier ones.")
		}
	}

	return insights
}

func absErr(t Task) float64 {
	diff := t.PredictedTime - *t.ActualTime
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func groupMeans(tasks []Task, key func(Task) string, value func(Task) float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range tasks {
		k := key(t)
		sums[k] += value(t)
		counts[k]++
	}
	means := make(map[string]float64, len(sums))
	for k, sum := range sums {
		means[k] = sum / float64(counts[k])
	}
	return means
}

// pickExtreme selects the key whose value wins under better, visiting keys in
// ascending lexicographic order so ties resolve to the smallest name.
func pickExtreme(values map[string]float64, better func(a, b float64) bool) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	winner := keys[0]
	for _, k := range keys[1:] {
		if better(values[k], values[winner]) {
			winner = k
		}
	}
	return winner
}
