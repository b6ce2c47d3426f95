package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"learnhub/db"
	"learnhub/internal/leaderboard"
	"learnhub/models"
	"learnhub/services"
	"learnhub/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AwardPointsRequest is the body of a point-granting event
type AwardPointsRequest struct {
	UserID      string                      `json:"userId,omitempty"` // Optional, defaults to current user
	Points      *int                        `json:"points" binding:"required"`
	Type        string                      `json:"type" binding:"required"`
	Description string                      `json:"description"`
	Metadata    *models.TransactionMetadata `json:"metadata,omitempty"`
}

// AwardBadgeRequest is the body of a manual badge award
type AwardBadgeRequest struct {
	BadgeID string `json:"badgeId" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

// ChallengeProgressRequest reports progress toward today's challenge
type ChallengeProgressRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	GoalType string `json:"goalType" binding:"required"`
	Count    int    `json:"count"`
}

// Valid transaction types for the award endpoint
var validAwardTypes = map[string]bool{
	models.TxLectureCompleted:  true,
	models.TxQuizPassed:        true,
	models.TxQuizPerfect:       true,
	models.TxCourseCompleted:   true,
	models.TxDailyLogin:        true,
	models.TxFirstQuizPerfect:  true,
	models.TxChallengeComplete: true,
}

// Rate limit configuration: max award requests per minute per type
const rateLimitWindow = 1 * time.Minute
const maxRequestsPerWindow = 30

// Anti-cheat cap on a single award
const maxPointsPerAward = 1000

// AwardPoints applies a point-granting event for the current user
func AwardPoints(c *gin.Context) {
	var req AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !validAwardTypes[req.Type] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid award type"})
		return
	}
	if *req.Points < 0 || *req.Points > maxPointsPerAward {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid points value"})
		return
	}

	targetUserID, ok := resolveTargetUser(c, req.UserID)
	if !ok {
		return
	}

	if !checkRateLimit(targetUserID, req.Type) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := services.GetGamificationService()
	result, err := svc.AwardPoints(ctx, targetUserID, *req.Points, req.Type, req.Description, req.Metadata)
	if err != nil {
		log.Printf("Error awarding points: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award points"})
		return
	}

	// Lecture completions at odd hours can also earn a time-of-day badge
	if req.Type == models.TxLectureCompleted {
		timeBadges, err := svc.CheckTimeBasedBadges(ctx, targetUserID, time.Now().Hour())
		if err != nil {
			log.Printf("Time-based badge check failed: %v", err)
		} else {
			result.NewBadges = append(result.NewBadges, timeBadges...)
		}
	}

	broadcastAwardEvents(targetUserID, req.Type, result)

	c.JSON(http.StatusOK, result)
}

// UpdateStreak continues or resets the current user's daily streak
func UpdateStreak(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := services.GetGamificationService().UpdateStreak(ctx, userID)
	if err != nil {
		log.Printf("Error updating streak: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update streak"})
		return
	}

	websocket.BroadcastGamificationEvent(models.GamificationEvent{
		Type:      "streak_updated",
		UserID:    userID.Hex(),
		Streak:    result.Profile.CurrentStreak,
		Points:    result.BonusPoints,
		NewTotal:  result.Profile.TotalPoints,
		Timestamp: time.Now(),
	})

	c.JSON(http.StatusOK, result)
}

// GetProfile returns the current user's profile and recent transactions
func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, txs, err := services.GetGamificationService().GetProfile(ctx, userID)
	if err != nil {
		log.Printf("Error fetching profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":            profile,
		"recentTransactions": txs,
	})
}

// GetBadges returns the badge catalog plus the current user's earned set
func GetBadges(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var userPtr *primitive.ObjectID
	if userID, exists := c.Get("userID"); exists {
		id := userID.(primitive.ObjectID)
		userPtr = &id
	}

	defs, earned, err := services.GetGamificationService().GetBadgeCatalog(ctx, userPtr)
	if err != nil {
		log.Printf("Error fetching badge catalog: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch badges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges": defs,
		"earned": earned,
	})
}

// AwardBadge manually grants a catalog badge to a user (admin surface)
func AwardBadge(c *gin.Context) {
	var req AwardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	targetUserID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	def, err := services.GetGamificationService().AwardBadgeManually(ctx, targetUserID, req.BadgeID)
	switch err {
	case nil:
	case services.ErrBadgeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown badge"})
		return
	case services.ErrBadgeAlreadyOwned:
		c.JSON(http.StatusConflict, gin.H{"error": "User already has this badge"})
		return
	default:
		log.Printf("Error awarding badge: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award badge"})
		return
	}

	websocket.BroadcastGamificationEvent(models.GamificationEvent{
		Type:      "badge_awarded",
		UserID:    targetUserID.Hex(),
		BadgeID:   def.BadgeID,
		Points:    def.Points,
		Timestamp: time.Now(),
	})

	// Bonus points may have reshuffled the ranking
	if err := leaderboard.Invalidate(ctx); err != nil {
		log.Printf("Failed to invalidate leaderboard cache: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Badge awarded successfully",
		"badge":   def,
		"userId":  targetUserID.Hex(),
	})
}

// SeedBadgeCatalog idempotently writes the static catalog into the store
func SeedBadgeCatalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := services.GetGamificationService().InitializeBadgeCatalog(ctx); err != nil {
		log.Printf("Error seeding badge catalog: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed catalog"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Badge catalog seeded"})
}

// GetTodayChallenge returns (creating if needed) today's challenge for a course
func GetTodayChallenge(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := services.GetGamificationService().TodayChallenge(ctx, courseID)
	if err != nil {
		log.Printf("Error fetching challenge: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch challenge"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// RecordChallengeProgress bumps the current user's progress on today's challenge
func RecordChallengeProgress(c *gin.Context) {
	var req ChallengeProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := services.GetGamificationService().RecordChallengeProgress(ctx, userID, req.CourseID, req.GoalType, req.Count)
	if err != nil {
		log.Printf("Error recording challenge progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record progress"})
		return
	}

	if result.Award != nil {
		broadcastAwardEvents(userID, models.TxChallengeComplete, result.Award)
	}
	c.JSON(http.StatusOK, result)
}

// currentUserID pulls the authenticated user id set by the auth middleware
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return userID.(primitive.ObjectID), true
}

// resolveTargetUser allows admins to act on other users; everyone else only
// acts on themselves.
func resolveTargetUser(c *gin.Context, requested string) (primitive.ObjectID, bool) {
	currentID, ok := currentUserID(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	if requested == "" {
		return currentID, true
	}

	targetID, err := primitive.ObjectIDFromHex(requested)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	if targetID != currentID {
		if isAdmin, _ := c.Get("isAdmin"); isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot award points to other users"})
			return primitive.NilObjectID, false
		}
	}
	return targetID, true
}

// broadcastAwardEvents pushes the outcome of an award to connected clients
func broadcastAwardEvents(userID primitive.ObjectID, action string, result *services.AwardResult) {
	now := time.Now()
	websocket.BroadcastGamificationEvent(models.GamificationEvent{
		Type:      "points_awarded",
		UserID:    userID.Hex(),
		Points:    result.Transaction.Points,
		NewTotal:  result.Profile.TotalPoints,
		Action:    action,
		Timestamp: now,
	})
	if result.LeveledUp {
		websocket.BroadcastGamificationEvent(models.GamificationEvent{
			Type:      "level_up",
			UserID:    userID.Hex(),
			NewLevel:  result.Profile.Level,
			Timestamp: now,
		})
	}
	for _, badge := range result.NewBadges {
		websocket.BroadcastGamificationEvent(models.GamificationEvent{
			Type:      "badge_awarded",
			UserID:    userID.Hex(),
			BadgeID:   badge.BadgeID,
			Points:    badge.Points,
			Timestamp: now,
		})
	}
}

// checkRateLimit verifies if an award request should be rate limited
func checkRateLimit(userID primitive.ObjectID, action string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rateLimitCollection := db.GetCollection(db.RateLimitsCollection)
	now := time.Now()
	windowStart := now.Truncate(rateLimitWindow)

	filter := bson.M{
		"userId":      userID,
		"action":      action,
		"windowStart": windowStart,
	}

	var entry models.RateLimitEntry
	err := rateLimitCollection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		// No entry exists, create one
		newEntry := models.RateLimitEntry{
			UserID:      userID,
			Action:      action,
			Count:       1,
			WindowStart: windowStart,
		}
		rateLimitCollection.InsertOne(ctx, newEntry)
		return true
	}

	if entry.Count >= maxRequestsPerWindow {
		return false
	}

	update := bson.M{"$inc": bson.M{"count": 1}}
	rateLimitCollection.UpdateOne(ctx, filter, update)

	go cleanupOldRateLimits()

	return true
}

// cleanupOldRateLimits removes rate limit entries older than the window
func cleanupOldRateLimits() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-rateLimitWindow * 2)
	rateLimitCollection := db.GetCollection(db.RateLimitsCollection)
	rateLimitCollection.DeleteMany(ctx, bson.M{"windowStart": bson.M{"$lt": cutoff}})
}

// parseQueryInt parses a positive integer query parameter with a fallback
func parseQueryInt(s string, fallback, max int) int {
	if s == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(s)
	if err != nil || parsed <= 0 || parsed > max {
		return fallback
	}
	return parsed
}
