// Package seed generates realistic fake todos for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pkordes/daily-tasks/backend/internal/domain"
)

// Tags is the fixed tag vocabulary seeded todos draw from.
var Tags = []string{"personal", "groceries", "course", "work"}

var templates = map[string][]string{
	"personal": {
		"Call %s about plans", "Buy birthday gift for %s", "Schedule dentist appointment",
		"Organize photos from %s", "Update personal blog", "Read %s book chapter",
		"Plan weekend trip to %s", "Clean out %s", "Reply to %s's email",
		"Renew %s subscription", "Fix broken %s at home", "Sort through old %s",
		"Make appointment with %s", "Update resume", "Practice %s hobby",
	},
	"groceries": {
		"Buy %s for dinner", "Get fresh %s", "Stock up on %s",
		"Buy %s from farmer's market", "Get %s for recipe", "Purchase %s in bulk",
		"Buy organic %s", "Get %s and %s", "Restock %s", "Buy %s for the week",
		"Get %s on sale", "Purchase %s for pantry", "Buy %s for breakfast",
		"Get %s and snacks", "Buy %s before they run out",
	},
	"course": {
		"Complete %s module", "Watch lecture on %s", "Submit %s assignment",
		"Study %s chapter", "Review %s notes", "Practice %s exercises",
		"Attend %s session", "Prepare for %s exam", "Read %s materials",
		"Complete %s quiz", "Work on %s project", "Research %s topic",
		"Write %s essay", "Study for %s test", "Complete %s homework",
	},
	"work": {
		"Review %s document", "Send email to %s team", "Update %s spreadsheet",
		"Attend %s meeting", "Complete %s report", "Follow up on %s project",
		"Prepare %s presentation", "Review %s code", "Update %s documentation",
		"Schedule %s call", "Fix %s bug", "Test %s feature",
		"Deploy %s to production", "Review %s proposal", "Plan %s sprint",
	},
}

var fillers = map[string][]string{
	"personal": {"mom", "friend", "summer vacation", "favorite", "the garage", "closet",
		"doctor", "gym", "Netflix", "the basement", "guitar", "clothes"},
	"groceries": {"milk", "bread", "eggs", "vegetables", "chicken", "pasta", "rice",
		"fruits", "cheese", "yogurt", "coffee", "tomatoes", "lettuce", "potatoes", "bananas"},
	"course": {"Python", "algorithms", "database", "machine learning", "calculus",
		"statistics", "web development", "data structures", "networking",
		"security", "final", "midterm", "JavaScript", "SQL", "React"},
	"work": {"quarterly", "client", "budget", "API", "dashboard", "weekly", "status",
		"pull request", "deployment", "architecture", "stakeholder", "Q4",
		"customer feedback", "design", "next"},
}

// Plan is one todo to create, plus whether to mark it completed afterwards.
type Plan struct {
	Todo      domain.NewTodo
	Completed bool
}

// Generate returns n plans with due dates anchored to today (truncated to
// midnight UTC). Roughly 30% are overdue, 40% due within a week, and the rest
// due 8 to 30 days out; about 20% are completed.
func Generate(rng *rand.Rand, today time.Time, n int) []Plan {
	midnight := today.UTC().Truncate(24 * time.Hour)

	plans := make([]Plan, 0, n)
	for range n {
		tags := pickTags(rng)
		due := dueDate(rng, midnight)
		plans = append(plans, Plan{
			Todo: domain.NewTodo{
				Text:    taskText(rng, tags[0]),
				DueDate: &due,
				Tags:    tags,
			},
			Completed: rng.Float64() < 0.2,
		})
	}
	return plans
}

// pickTags returns one tag 70% of the time and two distinct tags otherwise.
func pickTags(rng *rand.Rand) []string {
	count := 1
	if rng.Float64() >= 0.7 {
		count = 2
	}
	perm := rng.Perm(len(Tags))
	out := make([]string, count)
	for i := range out {
		out[i] = Tags[perm[i]]
	}
	return out
}

func taskText(rng *rand.Rand, tag string) string {
	choices := templates[tag]
	tmpl := choices[rng.IntN(len(choices))]

	words := fillers[tag]
	holes := strings.Count(tmpl, "%s")
	if holes == 0 {
		return tmpl
	}
	perm := rng.Perm(len(words))
	args := make([]any, holes)
	for i := range args {
		args[i] = words[perm[i]]
	}
	return fmt.Sprintf(tmpl, args...)
}

func dueDate(rng *rand.Rand, midnight time.Time) time.Time {
	var days int
	switch p := rng.Float64(); {
	case p < 0.3:
		days = -30 + rng.IntN(30) // -30..-1
	case p < 0.7:
		days = rng.IntN(8) // 0..7
	default:
		days = 8 + rng.IntN(23) // 8..30
	}
	hours := rng.IntN(24)
	return midnight.AddDate(0, 0, days).Add(time.Duration(hours) * time.Hour)
}

// Creator is the subset of the todo service the seeder writes through.
type Creator interface {
	Create(ctx context.Context, in domain.NewTodo) (domain.Todo, error)
	Toggle(ctx context.Context, id string) (domain.Todo, error)
}

// Stats summarises what Run inserted.
type Stats struct {
	Inserted  int
	Completed int
	Overdue   int
	ByTag     map[string]int
}

// Run creates every plan through svc, toggling the completed ones.
// It stops at the first error and returns the stats gathered so far.
func Run(ctx context.Context, svc Creator, plans []Plan, today time.Time) (Stats, error) {
	midnight := today.UTC().Truncate(24 * time.Hour)
	stats := Stats{ByTag: make(map[string]int, len(Tags))}

	for i, p := range plans {
		created, err := svc.Create(ctx, p.Todo)
		if err != nil {
			return stats, fmt.Errorf("seed.Run: todo %d: %w", i, err)
		}
		if p.Completed {
			if _, err := svc.Toggle(ctx, created.ID); err != nil {
				return stats, fmt.Errorf("seed.Run: complete todo %d: %w", i, err)
			}
			stats.Completed++
		}

		stats.Inserted++
		for _, tag := range created.Tags {
			stats.ByTag[tag]++
		}
		if created.DueDate != nil && created.DueDate.Before(midnight) {
			stats.Overdue++
		}
	}
	return stats, nil
}
