package wire

import (
	"Lumen/internal/api"
	"Lumen/internal/api/config"
	"Lumen/internal/api/handler"
	"Lumen/internal/job"
	"Lumen/internal/model"
	"Lumen/internal/pkg/cache"
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/cron"
	"Lumen/internal/pkg/kafka"
	"Lumen/internal/pkg/mongo"
	"Lumen/internal/pkg/redis"
	"Lumen/internal/pkg/worker"
	"Lumen/internal/repository"
	"Lumen/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// 单次画像重建的超时
const rebuildTimeout = 30 * time.Second

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	RebuildPool  *worker.Pool[uint64]
	CronJobs     cron.Jobs
	KafkaManager *kafka.ConsumerManager
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	clk := clock.New()

	behaviorRepo := repository.NewBehaviorRepository(db)
	contentRepo := repository.NewContentRepository(db)
	featureRepo := repository.NewContentFeatureRepository(db)
	profileRepo := repository.NewInterestProfileRepository(db)
	progressRepo := repository.NewLearningProgressRepository(db)
	statsRepo := repository.NewCommunityStatsRepository(db)
	snapshotRepo := mongo.NewLearningSnapshotRepo(mongoDB)

	similarCache := cache.New[[]model.SimilarUser](consts.CacheSimilarUsers, clk)
	resultCache := cache.New[[]*model.Recommendation](consts.CacheRecommend, clk)
	lastGoodCache := cache.New[[]*model.Recommendation](consts.CacheRecommendLast, clk)
	progressCache := cache.New[*model.LearningProgress](consts.CacheLearnProgress, clk)
	communityCache := cache.New[*model.CommunityLearningStats](consts.CacheCommunityStats, clk)

	profileDirty := redis.NewDirtySet(consts.ProfileDirtyKey)
	featureDirty := redis.NewDirtySet(consts.FeatureDirtyKey)
	locker := redis.NewLocker()

	rc := cfg.Recommend
	featureSvc := service.NewContentFeatureService(featureRepo, contentRepo, behaviorRepo, clk)
	profileSvc := service.NewInterestProfileService(behaviorRepo, featureRepo, profileRepo, rc.ProfileWindow, clk)
	similaritySvc := service.NewSimilarityService(profileRepo, similarCache, rc.SimilarityThreshold, rc.SimilarityTTLDuration())

	rebuild := service.NewProfileRebuildHandler(profileSvc, similaritySvc, resultCache)
	pool := worker.NewPool[uint64]("profile_rebuild", rc.WorkerCount, rc.QueueSize, rebuildTimeout, rebuild)

	behaviorSvc := service.NewBehaviorService(behaviorRepo, pool, profileDirty, featureDirty, clk)
	recommendSvc := service.NewRecommendService(rc, profileRepo, contentRepo, behaviorRepo, featureRepo,
		similaritySvc, resultCache, lastGoodCache, pool)
	learningSvc := service.NewLearningService(cfg.Learning, behaviorSvc, featureSvc, progressRepo, behaviorRepo,
		statsRepo, snapshotRepo, locker, progressCache, communityCache, clk)

	handlers := &api.HandlersGroup{
		RecommendHandler: handler.NewRecommendHandler(behaviorSvc, recommendSvc, profileSvc, similaritySvc, featureSvc),
		LearningHandler:  handler.NewLearningHandler(learningSvc),
	}
	router := api.SetupRouter(handlers)

	cronJobs := cron.Jobs{
		ProfileRebuild:    job.NewProfileRebuildJob(profileDirty, pool, rebuild),
		PopularityRefresh: job.NewPopularityRefreshJob(featureDirty, featureSvc),
		CommunitySnapshot: job.NewCommunitySnapshotJob(learningSvc),
	}

	kafkaMgr, err := kafka.NewConsumerManager(cfg, featureSvc)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		RebuildPool:  pool,
		CronJobs:     cronJobs,
		KafkaManager: kafkaMgr,
	}, nil
}
