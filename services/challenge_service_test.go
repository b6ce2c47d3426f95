package services

import (
	"context"
	"testing"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTodayChallengeCreatedOnce(t *testing.T) {
	svc, store := newTestService()
	fixedNow(svc, day(0))
	ctx := context.Background()

	first, err := svc.TodayChallenge(ctx, "course-1")
	if err != nil {
		t.Fatalf("TodayChallenge failed: %v", err)
	}
	second, err := svc.TodayChallenge(ctx, "course-1")
	if err != nil {
		t.Fatalf("TodayChallenge failed: %v", err)
	}
	if first.ID != second.ID {
		t.Error("Expected the same challenge document on repeat calls")
	}
	if len(store.chals) != 1 {
		t.Errorf("Expected exactly one stored challenge, got %d", len(store.chals))
	}
	if len(first.Goals) == 0 {
		t.Error("Expected default goals")
	}
}

func TestChallengeCompletionAwardsOnce(t *testing.T) {
	svc, store := newTestService()
	fixedNow(svc, day(0))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	// Default goals: 3 lectures, 1 quiz
	for i := 0; i < 3; i++ {
		result, err := svc.RecordChallengeProgress(ctx, userID, "course-1", GoalCompleteLectures, 1)
		if err != nil {
			t.Fatalf("RecordChallengeProgress failed: %v", err)
		}
		if result.Completed {
			t.Fatal("Challenge completed before all goals met")
		}
	}

	result, err := svc.RecordChallengeProgress(ctx, userID, "course-1", GoalPassQuizzes, 1)
	if err != nil {
		t.Fatalf("RecordChallengeProgress failed: %v", err)
	}
	if !result.Completed {
		t.Fatal("Expected challenge completion")
	}
	if result.Award == nil {
		t.Fatal("Expected a point award on completion")
	}
	if result.Award.Transaction.Type != models.TxChallengeComplete {
		t.Errorf("Expected %s transaction, got %s", models.TxChallengeComplete, result.Award.Transaction.Type)
	}
	if result.Award.Transaction.Points != 50 {
		t.Errorf("Expected combined 50 points, got %d", result.Award.Transaction.Points)
	}

	// Further progress must not re-award
	again, err := svc.RecordChallengeProgress(ctx, userID, "course-1", GoalCompleteLectures, 1)
	if err != nil {
		t.Fatalf("RecordChallengeProgress failed: %v", err)
	}
	if again.Award != nil {
		t.Error("Challenge awarded twice")
	}
	if sum := store.userTxSum(userID); sum != store.profiles[userID].TotalPoints {
		t.Errorf("Ledger sum %d != total %d", sum, store.profiles[userID].TotalPoints)
	}
}
