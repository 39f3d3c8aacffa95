// Package nav lists the feature cards shown on the hub page.
package nav

import "github.com/BuzzLyutic/planner-web/internal/model"

type Card struct {
	Label string
	Icon  string
	Path  string
}

func Cards() []Card {
	return []Card{
		{Label: "Tasks", Icon: "✅", Path: "/" + string(model.KindTasks)},
		{Label: "Activities", Icon: "🏃", Path: "/" + string(model.KindActivities)},
		{Label: "Matters", Icon: "📁", Path: "/" + string(model.KindMatters)},
		{Label: "Notes", Icon: "📝", Path: "/" + string(model.KindNotes)},
	}
}

// Label returns the card label for a kind, falling back to the kind itself.
func Label(kind model.Kind) string {
	for _, c := range Cards() {
		if c.Path == "/"+string(kind) {
			return c.Label
		}
	}
	return string(kind)
}
