package api

import "Lumen/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	RecommendHandler *handler.RecommendHandler
	LearningHandler  *handler.LearningHandler
}
