package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

// GetLeaderboardRouteHandler fetches the points leaderboard
func GetLeaderboardRouteHandler(c *gin.Context) {
	controllers.GetLeaderboard(c)
}
