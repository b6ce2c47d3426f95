package services

import (
	"context"
	"errors"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProfileNotFound   = errors.New("gamification profile not found")
	ErrBadgeNotFound     = errors.New("badge definition not found")
	ErrBadgeAlreadyOwned = errors.New("badge already earned")
	ErrChallengeNotFound = errors.New("daily challenge not found")
	ErrProgressNotFound  = errors.New("challenge progress not found")
)

// Store is the persistence boundary of the gamification engine. The mongo
// implementation lives in store_mongo.go; tests use an in-memory fake.
type Store interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.GamificationProfile, error)
	SaveProfile(ctx context.Context, profile *models.GamificationProfile) error

	InsertTransaction(ctx context.Context, tx *models.PointTransaction) error
	RecentTransactions(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PointTransaction, error)

	UpsertBadgeDefinition(ctx context.Context, def models.BadgeDefinition) error
	ListBadgeDefinitions(ctx context.Context) ([]models.BadgeDefinition, error)

	TopProfiles(ctx context.Context, limit int64) ([]models.GamificationProfile, error)
	UsersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)

	GetDailyChallenge(ctx context.Context, courseID, date string) (*models.DailyChallenge, error)
	SaveDailyChallenge(ctx context.Context, ch *models.DailyChallenge) error
	GetChallengeProgress(ctx context.Context, userID, challengeID primitive.ObjectID) (*models.UserChallengeProgress, error)
	SaveChallengeProgress(ctx context.Context, progress *models.UserChallengeProgress) error
}
