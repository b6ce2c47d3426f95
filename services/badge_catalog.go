package services

import (
	"learnhub/models"
)

// Badge trigger types select which slice of the catalog gets re-evaluated
// after an event.
const (
	TriggerLecture     = "lecture"
	TriggerQuiz        = "quiz"
	TriggerQuizPerfect = "quiz_perfect"
	TriggerCourse      = "course"
	TriggerLevel       = "level"
	TriggerStreak      = "streak"
)

// triggerCriteria maps a trigger type to the criteria kind it re-evaluates
var triggerCriteria = map[string]string{
	TriggerLecture:     models.CriteriaLecturesCompleted,
	TriggerQuiz:        models.CriteriaQuizzesPassed,
	TriggerQuizPerfect: models.CriteriaPerfectQuizzes,
	TriggerCourse:      models.CriteriaCoursesCompleted,
	TriggerLevel:       models.CriteriaLevel,
	TriggerStreak:      models.CriteriaStreak,
}

// badgeCatalog is the single source of truth for badge definitions. The
// badge_definitions collection is seeded from it and treated as a cache.
var badgeCatalog = []models.BadgeDefinition{
	// Learning: lectures
	{BadgeID: "first_lecture", Name: "First Steps", Description: "Complete your first lecture", Icon: "🎯", Category: models.CategoryLearning, Rarity: models.RarityCommon, Criteria: &models.BadgeCriteria{Type: models.CriteriaLecturesCompleted, Count: 1}, Points: 10},
	{BadgeID: "dedicated_learner", Name: "Dedicated Learner", Description: "Complete 10 lectures", Icon: "📚", Category: models.CategoryLearning, Rarity: models.RarityCommon, Criteria: &models.BadgeCriteria{Type: models.CriteriaLecturesCompleted, Count: 10}, Points: 25},
	{BadgeID: "lecture_marathon", Name: "Lecture Marathon", Description: "Complete 50 lectures", Icon: "🏃", Category: models.CategoryLearning, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaLecturesCompleted, Count: 50}, Points: 100},
	{BadgeID: "century_scholar", Name: "Century Scholar", Description: "Complete 100 lectures", Icon: "🎓", Category: models.CategoryLearning, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaLecturesCompleted, Count: 100}, Points: 250},

	// Learning: quizzes
	{BadgeID: "quiz_rookie", Name: "Quiz Rookie", Description: "Pass your first quiz", Icon: "✏️", Category: models.CategoryLearning, Rarity: models.RarityCommon, Criteria: &models.BadgeCriteria{Type: models.CriteriaQuizzesPassed, Count: 1}, Points: 10},
	{BadgeID: "quiz_whiz", Name: "Quiz Whiz", Description: "Pass 10 quizzes", Icon: "🧠", Category: models.CategoryLearning, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaQuizzesPassed, Count: 10}, Points: 25},
	{BadgeID: "quiz_master", Name: "Quiz Master", Description: "Pass 50 quizzes", Icon: "🏆", Category: models.CategoryLearning, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaQuizzesPassed, Count: 50}, Points: 100},

	// Achievement: perfect quizzes
	{BadgeID: "perfectionist", Name: "Perfectionist", Description: "Score 100% on a quiz", Icon: "💯", Category: models.CategoryAchievement, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaPerfectQuizzes, Count: 1}, Points: 50},
	{BadgeID: "flawless_ten", Name: "Flawless Ten", Description: "Score 100% on 10 quizzes", Icon: "✨", Category: models.CategoryAchievement, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaPerfectQuizzes, Count: 10}, Points: 150},

	// Achievement: courses
	{BadgeID: "course_finisher", Name: "Course Finisher", Description: "Complete your first course", Icon: "🏁", Category: models.CategoryAchievement, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaCoursesCompleted, Count: 1}, Points: 50},
	{BadgeID: "knowledge_collector", Name: "Knowledge Collector", Description: "Complete 5 courses", Icon: "📖", Category: models.CategoryAchievement, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaCoursesCompleted, Count: 5}, Points: 150},
	{BadgeID: "master_of_many", Name: "Master of Many", Description: "Complete 10 courses", Icon: "👑", Category: models.CategoryAchievement, Rarity: models.RarityLegendary, Criteria: &models.BadgeCriteria{Type: models.CriteriaCoursesCompleted, Count: 10}, Points: 300},

	// Achievement: levels
	{BadgeID: "rising_star", Name: "Rising Star", Description: "Reach level 5", Icon: "⭐", Category: models.CategoryAchievement, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaLevel, Count: 5}, Points: 25},
	{BadgeID: "high_achiever", Name: "High Achiever", Description: "Reach level 10", Icon: "🌟", Category: models.CategoryAchievement, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaLevel, Count: 10}, Points: 100},
	{BadgeID: "living_legend", Name: "Living Legend", Description: "Reach level 25", Icon: "🔱", Category: models.CategoryAchievement, Rarity: models.RarityLegendary, Criteria: &models.BadgeCriteria{Type: models.CriteriaLevel, Count: 25}, Points: 500},

	// Streaks
	{BadgeID: "week_warrior", Name: "Week Warrior", Description: "Keep a 7-day streak", Icon: "🔥", Category: models.CategoryStreak, Rarity: models.RarityRare, Criteria: &models.BadgeCriteria{Type: models.CriteriaStreak, Count: 7}, Points: 50},
	{BadgeID: "monthly_master", Name: "Monthly Master", Description: "Keep a 30-day streak", Icon: "🌙", Category: models.CategoryStreak, Rarity: models.RarityEpic, Criteria: &models.BadgeCriteria{Type: models.CriteriaStreak, Count: 30}, Points: 200},
	{BadgeID: "unstoppable", Name: "Unstoppable", Description: "Keep a 100-day streak", Icon: "⚡", Category: models.CategoryStreak, Rarity: models.RarityLegendary, Criteria: &models.BadgeCriteria{Type: models.CriteriaStreak, Count: 100}, Points: 500},

	// Special: time of day, awarded by the time-based check only
	{BadgeID: "early_bird", Name: "Early Bird", Description: "Complete a lecture before 8 AM", Icon: "🌅", Category: models.CategorySpecial, Rarity: models.RarityRare, Points: 25},
	{BadgeID: "night_owl", Name: "Night Owl", Description: "Complete a lecture after 10 PM", Icon: "🦉", Category: models.CategorySpecial, Rarity: models.RarityRare, Points: 25},
}

// BadgeCatalog returns the static catalog
func BadgeCatalog() []models.BadgeDefinition {
	return badgeCatalog
}

// findBadgeDefinition looks a badge up in the static catalog by id
func findBadgeDefinition(badgeID string) (models.BadgeDefinition, bool) {
	for _, def := range badgeCatalog {
		if def.BadgeID == badgeID {
			return def, true
		}
	}
	return models.BadgeDefinition{}, false
}

// criteriaMet evaluates a badge criterion against the profile. The switch
// covers every criteria kind of the closed contract.
func criteriaMet(c *models.BadgeCriteria, p *models.GamificationProfile) bool {
	if c == nil {
		return false
	}
	switch c.Type {
	case models.CriteriaLecturesCompleted:
		return p.TotalLecturesCompleted >= c.Count
	case models.CriteriaQuizzesPassed:
		return p.TotalQuizzesPassed >= c.Count
	case models.CriteriaPerfectQuizzes:
		// Unreachable category: the perfect-quiz counter was never fed by
		// the quiz collaborator, so these badges stay unawarded. The
		// counter itself is maintained for when that wiring lands.
		return false
	case models.CriteriaCoursesCompleted:
		return p.TotalCoursesCompleted >= c.Count
	case models.CriteriaLevel:
		return p.Level >= c.Count
	case models.CriteriaStreak:
		return p.CurrentStreak >= c.Count
	}
	return false
}
