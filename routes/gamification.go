package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

func AwardPointsRouteHandler(c *gin.Context) {
	controllers.AwardPoints(c)
}

func UpdateStreakRouteHandler(c *gin.Context) {
	controllers.UpdateStreak(c)
}

func GetProfileRouteHandler(c *gin.Context) {
	controllers.GetProfile(c)
}

func GetBadgesRouteHandler(c *gin.Context) {
	controllers.GetBadges(c)
}

func AwardBadgeRouteHandler(c *gin.Context) {
	controllers.AwardBadge(c)
}

func SeedBadgeCatalogRouteHandler(c *gin.Context) {
	controllers.SeedBadgeCatalog(c)
}

func GetTodayChallengeRouteHandler(c *gin.Context) {
	controllers.GetTodayChallenge(c)
}

func RecordChallengeProgressRouteHandler(c *gin.Context) {
	controllers.RecordChallengeProgress(c)
}
