package services

import (
	"context"
	"log"

	"learnhub/internal/leaderboard"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	UserID        string `json:"userId"`
	Rank          int    `json:"rank"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	TotalPoints   int    `json:"totalPoints"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"currentStreak"`
}

// GetLeaderboard returns the top profiles by total points joined with user
// display data. The timeframe and courseID parameters are accepted for API
// compatibility but do not filter the query. Results are served from the
// redis cache when fresh.
func (s *GamificationService) GetLeaderboard(ctx context.Context, limit int64, timeframe, courseID string) ([]LeaderboardEntry, error) {
	_ = timeframe
	_ = courseID

	var cached []LeaderboardEntry
	if ok, err := leaderboard.Get(ctx, limit, &cached); err == nil && ok {
		return cached, nil
	}

	profiles, err := s.store.TopProfiles(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.store.UsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entry := LeaderboardEntry{
			UserID:        p.UserID.Hex(),
			Rank:          i + 1,
			TotalPoints:   p.TotalPoints,
			Level:         p.Level,
			CurrentStreak: p.CurrentStreak,
		}
		if user, ok := users[p.UserID]; ok {
			entry.DisplayName = user.DisplayName
			entry.Email = user.Email
			entry.AvatarURL = user.AvatarURL
			if entry.DisplayName == "" {
				entry.DisplayName = user.Email
			}
		}
		entries = append(entries, entry)
	}

	if err := leaderboard.Set(ctx, limit, entries); err != nil {
		log.Printf("Failed to cache leaderboard: %v", err)
	}
	return entries, nil
}
