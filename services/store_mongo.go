package services

import (
	"context"
	"time"

	"learnhub/db"
	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on the shared MongoDB database
type MongoStore struct{}

// NewMongoStore returns a store over the connected database
func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (m *MongoStore) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.GamificationProfile, error) {
	var profile models.GamificationProfile
	err := db.GetCollection(db.ProfilesCollection).FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *MongoStore) SaveProfile(ctx context.Context, profile *models.GamificationProfile) error {
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := db.GetCollection(db.ProfilesCollection).ReplaceOne(ctx, bson.M{"userId": profile.UserID}, profile, opts)
	return err
}

func (m *MongoStore) InsertTransaction(ctx context.Context, tx *models.PointTransaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	_, err := db.GetCollection(db.TransactionsCollection).InsertOne(ctx, tx)
	return err
}

func (m *MongoStore) RecentTransactions(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PointTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := db.GetCollection(db.TransactionsCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.PointTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (m *MongoStore) UpsertBadgeDefinition(ctx context.Context, def models.BadgeDefinition) error {
	update := bson.M{"$setOnInsert": bson.M{
		"badgeId":     def.BadgeID,
		"name":        def.Name,
		"description": def.Description,
		"icon":        def.Icon,
		"category":    def.Category,
		"rarity":      def.Rarity,
		"criteria":    def.Criteria,
		"points":      def.Points,
		"createdAt":   time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := db.GetCollection(db.BadgesCollection).UpdateOne(ctx, bson.M{"badgeId": def.BadgeID}, update, opts)
	return err
}

func (m *MongoStore) ListBadgeDefinitions(ctx context.Context) ([]models.BadgeDefinition, error) {
	cursor, err := db.GetCollection(db.BadgesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var defs []models.BadgeDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (m *MongoStore) TopProfiles(ctx context.Context, limit int64) ([]models.GamificationProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "totalPoints", Value: -1}}).SetLimit(limit)
	cursor, err := db.GetCollection(db.ProfilesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.GamificationProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (m *MongoStore) UsersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.User{}, nil
	}
	cursor, err := db.GetCollection(db.UsersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make(map[primitive.ObjectID]models.User, len(ids))
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, cursor.Err()
}

func (m *MongoStore) GetDailyChallenge(ctx context.Context, courseID, date string) (*models.DailyChallenge, error) {
	var ch models.DailyChallenge
	err := db.GetCollection(db.DailyChallengesCollection).FindOne(ctx, bson.M{"courseId": courseID, "date": date}).Decode(&ch)
	if err == mongo.ErrNoDocuments {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (m *MongoStore) SaveDailyChallenge(ctx context.Context, ch *models.DailyChallenge) error {
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := db.GetCollection(db.DailyChallengesCollection).ReplaceOne(ctx, bson.M{"courseId": ch.CourseID, "date": ch.Date}, ch, opts)
	return err
}

func (m *MongoStore) GetChallengeProgress(ctx context.Context, userID, challengeID primitive.ObjectID) (*models.UserChallengeProgress, error) {
	var progress models.UserChallengeProgress
	err := db.GetCollection(db.ChallengeProgressCollection).FindOne(ctx, bson.M{"userId": userID, "challengeId": challengeID}).Decode(&progress)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (m *MongoStore) SaveChallengeProgress(ctx context.Context, progress *models.UserChallengeProgress) error {
	if progress.ID.IsZero() {
		progress.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := db.GetCollection(db.ChallengeProgressCollection).ReplaceOne(ctx, bson.M{"userId": progress.UserID, "challengeId": progress.ChallengeID}, progress, opts)
	return err
}
