package services

import (
	"context"
	"testing"
	"time"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestStreakFirstActivity(t *testing.T) {
	svc, _ := newTestService()
	fixedNow(svc, day(0))
	userID := primitive.NewObjectID()

	result, err := svc.UpdateStreak(context.Background(), userID)
	if err != nil {
		t.Fatalf("UpdateStreak failed: %v", err)
	}
	if result.StreakBroken {
		t.Error("New profile reported a broken streak")
	}
	if result.BonusPoints != 0 {
		t.Errorf("Expected no bonus on first activity, got %d", result.BonusPoints)
	}
	if result.Profile.CurrentStreak != 1 || result.Profile.LongestStreak != 1 {
		t.Errorf("Expected streak 1/1, got %d/%d", result.Profile.CurrentStreak, result.Profile.LongestStreak)
	}
}

func TestStreakSameDayIdempotent(t *testing.T) {
	svc, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	fixedNow(svc, day(0))
	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatal(err)
	}

	// Later the same calendar day
	fixedNow(svc, day(0).Add(5*time.Hour))
	result, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("UpdateStreak failed: %v", err)
	}
	if result.StreakBroken || result.BonusPoints != 0 {
		t.Errorf("Same-day call changed state: %+v", result)
	}
	if result.Profile.CurrentStreak != 1 {
		t.Errorf("Expected streak unchanged at 1, got %d", result.Profile.CurrentStreak)
	}
}

func TestStreakConsecutiveDays(t *testing.T) {
	svc, store := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	fixedNow(svc, day(0))
	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatal(err)
	}

	fixedNow(svc, day(1))
	result, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("UpdateStreak failed: %v", err)
	}
	if result.StreakBroken {
		t.Error("Consecutive day reported broken streak")
	}
	if result.Profile.CurrentStreak != 2 {
		t.Errorf("Expected streak 2, got %d", result.Profile.CurrentStreak)
	}
	if result.BonusPoints != 10 {
		t.Errorf("Expected daily bonus 10, got %d", result.BonusPoints)
	}
	if sum := store.userTxSum(userID); sum != store.profiles[userID].TotalPoints {
		t.Errorf("Ledger sum %d != total %d", sum, store.profiles[userID].TotalPoints)
	}
}

func TestStreakBreakResetsToOne(t *testing.T) {
	svc, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	fixedNow(svc, day(0))
	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 4; i++ {
		fixedNow(svc, day(i))
		if _, err := svc.UpdateStreak(ctx, userID); err != nil {
			t.Fatal(err)
		}
	}

	// Three-day gap
	fixedNow(svc, day(8))
	result, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("UpdateStreak failed: %v", err)
	}
	if !result.StreakBroken {
		t.Error("Expected streakBroken after gap")
	}
	if result.BonusPoints != 0 {
		t.Errorf("Expected no bonus after break, got %d", result.BonusPoints)
	}
	if result.Profile.CurrentStreak != 1 {
		t.Errorf("Expected streak reset to 1, got %d", result.Profile.CurrentStreak)
	}
	if result.Profile.LongestStreak != 5 {
		t.Errorf("Expected longest streak 5 preserved, got %d", result.Profile.LongestStreak)
	}
}

// Reaching day N means N-1 consecutive increments after the first activity.
func runStreakTo(t *testing.T, svc *GamificationService, userID primitive.ObjectID, target int) *StreakResult {
	t.Helper()
	ctx := context.Background()
	fixedNow(svc, day(0))
	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatal(err)
	}
	var last *StreakResult
	for i := 1; i < target; i++ {
		fixedNow(svc, day(i))
		result, err := svc.UpdateStreak(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		last = result
	}
	return last
}

func TestStreakBonusTiers(t *testing.T) {
	tests := []struct {
		streak int
		bonus  int
	}{
		{7, 50},   // weekly
		{14, 50},  // weekly multiple
		{30, 200}, // monthly
		{210, 50}, // divisible by both: weekly branch wins
	}
	for _, tt := range tests {
		svc, _ := newTestService()
		userID := primitive.NewObjectID()
		result := runStreakTo(t, svc, userID, tt.streak)
		if result.Profile.CurrentStreak != tt.streak {
			t.Fatalf("streak=%d: reached %d", tt.streak, result.Profile.CurrentStreak)
		}
		if result.BonusPoints != tt.bonus {
			t.Errorf("streak=%d: expected bonus %d, got %d", tt.streak, tt.bonus, result.BonusPoints)
		}
	}
}

func TestStreakBonusFunction(t *testing.T) {
	cases := map[int]int{
		1:   10,
		6:   10,
		7:   50,
		14:  50,
		29:  10,
		30:  200,
		60:  200,
		210: 50,
	}
	for streak, want := range cases {
		if got := streakBonus(streak); got != want {
			t.Errorf("streakBonus(%d) = %d, want %d", streak, got, want)
		}
	}
}

func TestStreakAwardsStreakBadges(t *testing.T) {
	svc, store := newTestService()
	userID := primitive.NewObjectID()

	runStreakTo(t, svc, userID, 7)
	p := store.profiles[userID]
	if !(&p).HasBadge("week_warrior") {
		t.Error("Expected week_warrior badge at 7-day streak")
	}
	if sum := store.userTxSum(userID); sum != p.TotalPoints {
		t.Errorf("Ledger sum %d != total %d", sum, p.TotalPoints)
	}
}

func TestStreakTransactionRecorded(t *testing.T) {
	svc, store := newTestService()
	userID := primitive.NewObjectID()

	runStreakTo(t, svc, userID, 2)
	found := false
	for _, tx := range store.txs {
		if tx.Type == models.TxStreakBonus && tx.Points == 10 {
			found = true
		}
	}
	if !found {
		t.Error("Expected a streak_bonus transaction")
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 3, 1, 23, 50, 0, 0, time.UTC)
	next := time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC)
	if d := daysBetween(base, next); d != 1 {
		t.Errorf("Expected 1 day across midnight, got %d", d)
	}
	if d := daysBetween(base, base.Add(time.Hour)); d != 1 {
		t.Errorf("23:50 +1h crosses midnight, expected 1, got %d", d)
	}
	if d := daysBetween(base, base.Add(9*time.Minute)); d != 0 {
		t.Errorf("Same day, expected 0, got %d", d)
	}
	if d := daysBetween(base, base.AddDate(0, 0, 3)); d != 3 {
		t.Errorf("Expected 3 days, got %d", d)
	}
}
