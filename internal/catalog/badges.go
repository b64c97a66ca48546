package catalog

import (
	"time"

	"timebank/internal/models"
)

// BadgeDef is a badge definition together with its award predicate.
// Predicates read only BadgeStats, so evaluation is a pure function.
type BadgeDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Category    string `json:"category"`

	qualifies func(s BadgeStats) bool
}

// BadgeStats is a snapshot of the numbers the badge predicates look at.
type BadgeStats struct {
	UserID         int64
	TasksCompleted int
	CreditsEarned  int
	SkillCount     int
	ReviewCount    int
	Rating         float64
}

// Badges is the full badge catalog. Thresholds are inclusive: exactly five
// completed tasks qualifies for Helper Hero.
var Badges = []BadgeDef{
	{
		Name:        "Newbie",
		Description: "Completed your first task",
		Icon:        "🌱",
		Color:       "from-green-400 to-green-500",
		Category:    "achievement",
		qualifies:   func(s BadgeStats) bool { return s.TasksCompleted >= 1 },
	},
	{
		Name:        "Helper Hero",
		Description: "Helped 5 community members",
		Icon:        "🦸",
		Color:       "from-blue-400 to-blue-500",
		Category:    "achievement",
		qualifies:   func(s BadgeStats) bool { return s.TasksCompleted >= 5 },
	},
	{
		Name:        "TimeMaster",
		Description: "Earned 50+ credits",
		Icon:        "⏰",
		Color:       "from-purple-400 to-purple-500",
		Category:    "milestone",
		qualifies:   func(s BadgeStats) bool { return s.CreditsEarned >= 50 },
	},
	{
		Name:        "Community Star",
		Description: "Received 10+ five-star reviews",
		Icon:        "⭐",
		Color:       "from-yellow-400 to-yellow-500",
		Category:    "achievement",
		qualifies:   func(s BadgeStats) bool { return s.ReviewCount >= 10 && s.Rating >= 4.5 },
	},
	{
		Name:        "Skill Master",
		Description: "Added 10+ skills to profile",
		Icon:        "🎯",
		Color:       "from-indigo-400 to-indigo-500",
		Category:    "milestone",
		qualifies:   func(s BadgeStats) bool { return s.SkillCount >= 10 },
	},
	{
		Name:        "Early Adopter",
		Description: "One of the first 100 members",
		Icon:        "🚀",
		Color:       "from-pink-400 to-pink-500",
		Category:    "special",
		qualifies:   func(s BadgeStats) bool { return s.UserID <= 100 },
	},
	{
		Name:        "Mentor",
		Description: "Completed 20+ tutoring sessions",
		Icon:        "👨‍🏫",
		Color:       "from-emerald-400 to-emerald-500",
		Category:    "achievement",
		qualifies:   func(s BadgeStats) bool { return s.TasksCompleted >= 20 },
	},
	{
		Name:        "Credit Collector",
		Description: "Earned 100+ credits total",
		Icon:        "💰",
		Color:       "from-amber-400 to-amber-500",
		Category:    "milestone",
		qualifies:   func(s BadgeStats) bool { return s.CreditsEarned >= 100 },
	},
}

// EvaluateBadges returns the badges newly earned for the given stats,
// skipping any names already held. Calling it twice with the same inputs
// yields nothing the second time, so awarding is idempotent.
func EvaluateBadges(held []models.Badge, stats BadgeStats, now time.Time) []models.Badge {
	heldNames := make(map[string]bool, len(held))
	for _, b := range held {
		heldNames[b.Name] = true
	}

	var earned []models.Badge
	for _, def := range Badges {
		if heldNames[def.Name] || !def.qualifies(stats) {
			continue
		}
		earned = append(earned, models.Badge{
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Color:       def.Color,
			Category:    def.Category,
			EarnedAt:    now,
		})
	}
	return earned
}
