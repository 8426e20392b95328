package api

import (
	"Lumen/internal/api/middleware"
	"Lumen/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		recommendGroup := apiGroup.Group("/recommend")
		{
			recommendGroup.POST("/behavior", group.RecommendHandler.RecordBehavior)
			recommendGroup.GET("/recommendations/:user_id", group.RecommendHandler.GetRecommendations)
			recommendGroup.GET("/profile/:user_id", group.RecommendHandler.GetProfile)
			recommendGroup.GET("/similar/:user_id", group.RecommendHandler.GetSimilarUsers)
			recommendGroup.GET("/stats", group.RecommendHandler.GetStats)

			featureGroup := recommendGroup.Group("/features")
			{
				featureGroup.POST("/init", group.RecommendHandler.InitializeFeatures)
				featureGroup.POST("/normalize", group.RecommendHandler.NormalizeFeatures)
			}
		}

		learningGroup := apiGroup.Group("/learning")
		{
			learningGroup.GET("/progress/:user_id", group.LearningHandler.GetProgress)
			learningGroup.POST("/activity", group.LearningHandler.RecordActivity)
			learningGroup.GET("/community/stats", group.LearningHandler.GetCommunityStats)
			learningGroup.POST("/goals", group.LearningHandler.SetGoal)
			learningGroup.PUT("/goals/:goal_id", group.LearningHandler.UpdateGoalProgress)
			learningGroup.GET("/achievements/:user_id", group.LearningHandler.GetAchievements)
			learningGroup.GET("/efficiency/:user_id", group.LearningHandler.GetEfficiency)
			learningGroup.GET("/snapshots/:user_id", group.LearningHandler.ListSnapshots)
		}
	}

	return r
}
