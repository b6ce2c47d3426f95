package services

import (
	"context"
	"fmt"
	"time"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Challenge goal kinds
const (
	GoalCompleteLectures = "complete_lectures"
	GoalPassQuizzes      = "pass_quizzes"
	GoalStudyMinutes     = "study_minutes"
)

// defaultChallengeGoals are used when a course has no challenge for today yet
var defaultChallengeGoals = []models.ChallengeGoal{
	{Type: GoalCompleteLectures, Target: 3, Points: 30},
	{Type: GoalPassQuizzes, Target: 1, Points: 20},
}

// ChallengeResult reports a progress update and any completion award
type ChallengeResult struct {
	Challenge *models.DailyChallenge        `json:"challenge"`
	Progress  *models.UserChallengeProgress `json:"progress"`
	Completed bool                          `json:"completed"`
	Award     *AwardResult                  `json:"award,omitempty"`
}

func challengeDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TodayChallenge returns the course's challenge for today, creating the
// default one when absent.
func (s *GamificationService) TodayChallenge(ctx context.Context, courseID string) (*models.DailyChallenge, error) {
	date := challengeDate(s.now())
	ch, err := s.store.GetDailyChallenge(ctx, courseID, date)
	if err == nil {
		return ch, nil
	}
	if err != ErrChallengeNotFound {
		return nil, err
	}

	ch = &models.DailyChallenge{
		CourseID:  courseID,
		Date:      date,
		Goals:     defaultChallengeGoals,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveDailyChallenge(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to save daily challenge: %w", err)
	}
	return ch, nil
}

// RecordChallengeProgress bumps the user's count for one goal of today's
// challenge. When every goal is met the challenge completes exactly once
// and its combined points are awarded through the regular pathway.
func (s *GamificationService) RecordChallengeProgress(ctx context.Context, userID primitive.ObjectID, courseID, goalType string, n int) (*ChallengeResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("progress increment must be positive")
	}

	ch, err := s.TodayChallenge(ctx, courseID)
	if err != nil {
		return nil, err
	}

	progress, err := s.store.GetChallengeProgress(ctx, userID, ch.ID)
	if err == ErrProgressNotFound {
		progress = &models.UserChallengeProgress{
			UserID:      userID,
			ChallengeID: ch.ID,
			Counts:      map[string]int{},
		}
	} else if err != nil {
		return nil, err
	}

	result := &ChallengeResult{Challenge: ch, Progress: progress}
	if progress.Completed {
		result.Completed = true
		return result, nil
	}

	progress.Counts[goalType] += n
	progress.UpdatedAt = s.now()

	allMet := true
	total := 0
	for _, goal := range ch.Goals {
		total += goal.Points
		if progress.Counts[goal.Type] < goal.Target {
			allMet = false
		}
	}

	if allMet {
		progress.Completed = true
		progress.CompletedAt = s.now()
	}
	if err := s.store.SaveChallengeProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save challenge progress: %w", err)
	}

	if allMet {
		award, err := s.AwardPoints(ctx, userID, total, models.TxChallengeComplete,
			fmt.Sprintf("Completed daily challenge for %s", ch.Date),
			&models.TransactionMetadata{CourseID: courseID})
		if err != nil {
			return nil, err
		}
		result.Completed = true
		result.Award = award
	}
	return result, nil
}
