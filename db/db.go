package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the gamification engine.
const (
	UsersCollection             = "users"
	ProfilesCollection          = "gamification_profiles"
	TransactionsCollection      = "point_transactions"
	BadgesCollection            = "badge_definitions"
	RateLimitsCollection        = "rate_limits"
	DailyChallengesCollection   = "daily_challenges"
	ChallengeProgressCollection = "challenge_progress"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database

// GetCollection returns a collection by name
func GetCollection(collectionName string) *mongo.Collection {
	return MongoDatabase.Collection(collectionName)
}

// extractDBName parses the database name from the URI, defaulting to "learnhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "learnhub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "learnhub"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	return nil
}
