package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"learnhub/services"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top profiles by total points. The timeframe and
// courseId query parameters are accepted but do not filter the ranking.
func GetLeaderboard(c *gin.Context) {
	limit := parseQueryInt(c.Query("limit"), 50, 100)
	timeframe := c.DefaultQuery("timeframe", "all")
	courseID := c.Query("courseId")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := services.GetGamificationService().GetLeaderboard(ctx, int64(limit), timeframe, courseID)
	if err != nil {
		log.Printf("Failed to fetch leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}

	currentEmail, _ := c.Get("email")
	type row struct {
		services.LeaderboardEntry
		CurrentUser bool `json:"currentUser"`
	}
	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, row{
			LeaderboardEntry: entry,
			CurrentUser:      entry.Email != "" && entry.Email == currentEmail,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": rows,
		"total":       len(rows),
	})
}
