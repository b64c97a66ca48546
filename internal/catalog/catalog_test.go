package catalog

import (
	"testing"
	"time"

	"timebank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTypeLookups(t *testing.T) {
	taskType, ok := TaskTypeByID("math-tutoring")
	require.True(t, ok)
	assert.Equal(t, "Math Tutoring (1 session)", taskType.Name)
	assert.Equal(t, "Education", taskType.Category)

	taskType, ok = TaskTypeByName("Resume Review")
	require.True(t, ok)
	assert.Equal(t, "resume-review", taskType.ID)

	_, ok = TaskTypeByID("unknown")
	assert.False(t, ok)

	_, ok = TaskTypeByName("Unknown Task")
	assert.False(t, ok)
}

func TestTaskTypeCatalogComplete(t *testing.T) {
	assert.Len(t, TaskTypes, 15)

	seen := make(map[string]bool, len(TaskTypes))
	for _, taskType := range TaskTypes {
		assert.False(t, seen[taskType.ID], "duplicate id %s", taskType.ID)
		seen[taskType.ID] = true
		assert.NotEmpty(t, taskType.Name)
		assert.NotEmpty(t, taskType.Category)
	}
}

func TestPlanByID(t *testing.T) {
	testCases := []struct {
		id          string
		wantCredits int
		wantPrice   int
		wantOK      bool
	}{
		{id: "starter", wantCredits: 10, wantPrice: 49, wantOK: true},
		{id: "popular", wantCredits: 25, wantPrice: 99, wantOK: true},
		{id: "premium", wantCredits: 60, wantPrice: 199, wantOK: true},
		{id: "enterprise", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			plan, ok := PlanByID(tc.id)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.wantCredits, plan.Credits)
				assert.Equal(t, tc.wantPrice, plan.Price)
			}
		})
	}
}

func TestEvaluateBadgesThresholds(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name       string
		stats      BadgeStats
		wantBadges []string
	}{
		{
			name:       "no activity",
			stats:      BadgeStats{UserID: 500},
			wantBadges: nil,
		},
		{
			name:       "first task",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 1},
			wantBadges: []string{"Newbie"},
		},
		{
			name:       "four tasks is not a Helper Hero",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 4},
			wantBadges: []string{"Newbie"},
		},
		{
			name:       "five tasks earns Helper Hero",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 5},
			wantBadges: []string{"Newbie", "Helper Hero"},
		},
		{
			name:       "fifty credits earns TimeMaster",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 1, CreditsEarned: 50},
			wantBadges: []string{"Newbie", "TimeMaster"},
		},
		{
			name:       "hundred credits stacks Credit Collector",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 1, CreditsEarned: 100},
			wantBadges: []string{"Newbie", "TimeMaster", "Credit Collector"},
		},
		{
			name:       "community star needs both reviews and rating",
			stats:      BadgeStats{UserID: 500, ReviewCount: 10, Rating: 4.4},
			wantBadges: nil,
		},
		{
			name:       "community star",
			stats:      BadgeStats{UserID: 500, ReviewCount: 10, Rating: 4.5},
			wantBadges: []string{"Community Star"},
		},
		{
			name:       "ten skills earns Skill Master",
			stats:      BadgeStats{UserID: 500, SkillCount: 10},
			wantBadges: []string{"Skill Master"},
		},
		{
			name:       "early adopter by id",
			stats:      BadgeStats{UserID: 100, TasksCompleted: 1},
			wantBadges: []string{"Newbie", "Early Adopter"},
		},
		{
			name:       "user 101 is not an early adopter",
			stats:      BadgeStats{UserID: 101, TasksCompleted: 1},
			wantBadges: []string{"Newbie"},
		},
		{
			name:       "twenty tasks earns Mentor",
			stats:      BadgeStats{UserID: 500, TasksCompleted: 20},
			wantBadges: []string{"Newbie", "Helper Hero", "Mentor"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			earned := EvaluateBadges(nil, tc.stats, now)

			var names []string
			for _, badge := range earned {
				names = append(names, badge.Name)
			}
			assert.ElementsMatch(t, tc.wantBadges, names)
		})
	}
}

func TestEvaluateBadgesSkipsHeld(t *testing.T) {
	now := time.Now()
	stats := BadgeStats{UserID: 500, TasksCompleted: 5}

	first := EvaluateBadges(nil, stats, now)
	require.Len(t, first, 2)
	for _, badge := range first {
		assert.Equal(t, now, badge.EarnedAt)
	}

	// A second evaluation with the same stats awards nothing new.
	second := EvaluateBadges(first, stats, now)
	assert.Empty(t, second)
}

func TestEvaluateBadgesHeldPartially(t *testing.T) {
	now := time.Now()
	held := []models.Badge{{Name: "Newbie"}}

	earned := EvaluateBadges(held, BadgeStats{UserID: 500, TasksCompleted: 5}, now)
	require.Len(t, earned, 1)
	assert.Equal(t, "Helper Hero", earned[0].Name)
}
