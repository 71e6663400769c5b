package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"trustvest-backend/internal/audit"
	"trustvest-backend/internal/client"
	"trustvest-backend/internal/config"
	"trustvest-backend/internal/encryption"
	"trustvest-backend/internal/gemini"
	"trustvest-backend/internal/hashing"
	"trustvest-backend/internal/repository/mongodb"
	redisrepo "trustvest-backend/internal/repository/redis"
	"trustvest-backend/internal/service"
	"trustvest-backend/internal/util"
)

// Factory manages the lifecycle of all application dependencies. Every
// external client is optional: a failed init leaves the client nil and the
// dependent endpoints degrade instead of the process refusing to start.
type Factory struct {
	config *config.Config

	// Clients
	mongoClient      *client.MongoClient
	s3Client         *client.S3Client
	redisClient      *client.RedisClient
	kafkaProducer    *client.KafkaProducer
	clickhouseClient *client.ClickHouseClient
	geminiClient     *gemini.Client

	// Managers
	hasher            *hashing.Hasher
	encryptionManager *encryption.Manager

	// Repositories and caches
	userRepository mongodb.UserRepository
	profileCache   *redisrepo.ProfileCache
	rateLimitCache *redisrepo.RateLimitCache
	auditRecorder  *audit.Recorder

	// Services
	accountService *service.AccountService
	kycService     *service.KYCService
	advisorService *service.AdvisorService
	statusService  *service.StatusService

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	factory.initializeClients()
	factory.initializeManagers()
	factory.initializeServices()

	util.Info("Factory initialized",
		util.String("environment", cfg.Environment),
		util.Bool("mongo_available", factory.mongoClient != nil),
		util.Bool("s3_available", factory.s3Client != nil),
		util.Bool("redis_available", factory.redisClient != nil),
		util.Bool("gemini_configured", factory.geminiClient != nil),
		util.Bool("kms_enabled", cfg.KMS.Enabled),
	)

	return factory, nil
}

// initializeClients initializes all external service clients with health
// checks. Failures are logged and the client left nil.
func (f *Factory) initializeClients() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// MongoDB
	if mc, err := client.NewMongoClient(f.config, util.Get()); err != nil {
		util.Warn("MongoDB initialization failed - persistence endpoints will degrade", util.ErrorField(err))
	} else {
		f.mongoClient = mc
		if err := f.mongoClient.HealthCheck(ctx); err != nil {
			util.Warn("MongoDB health check failed", util.ErrorField(err))
		} else {
			util.Info("MongoDB client initialized and healthy")
		}
	}

	// S3
	if sc, err := client.NewS3Client(f.config, util.Get()); err != nil {
		util.Warn("S3 initialization failed - photo uploads disabled", util.ErrorField(err))
	} else {
		f.s3Client = sc
		util.Info("S3 client initialized")
	}

	// Redis
	if rc, err := client.NewRedisClient(f.config, util.Get()); err != nil {
		util.Warn("Redis initialization failed - caching and rate limiting disabled", util.ErrorField(err))
	} else {
		f.redisClient = rc
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			util.Warn("Redis health check failed", util.ErrorField(err))
		} else {
			util.Info("Redis client initialized and healthy")
		}
	}

	// Kafka
	if producer, err := client.NewKafkaProducer(f.config, util.Get()); err != nil {
		util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
	} else {
		f.kafkaProducer = producer
		util.Info("Kafka producer initialized")
	}

	// ClickHouse
	if ch, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
		util.Warn("ClickHouse initialization failed - proceeding without analytics sink", util.ErrorField(err))
	} else {
		f.clickhouseClient = ch
		util.Info("ClickHouse client initialized")
	}

	// Gemini
	if f.config.Gemini.APIKey != "" {
		opts := []gemini.Option{}
		if f.config.Gemini.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(f.config.Gemini.BaseURL))
		}
		f.geminiClient = gemini.NewClient(f.config.Gemini.APIKey, opts...)
		util.Info("Gemini client initialized", util.String("model", f.config.Gemini.Model))
	} else {
		util.Warn("API_KEY not set - chat and debate endpoints disabled")
	}
}

// initializeManagers initializes the hashing and encryption managers.
func (f *Factory) initializeManagers() {
	f.hasher = hashing.NewHasher(0)

	var kmsClient *kms.Client
	if f.config.KMS.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(f.config.AWS.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(f.config.AWS.AccessKeyID, f.config.AWS.SecretAccessKey, ""),
			),
		)
		if err != nil {
			util.Warn("KMS initialization failed - falling back to local data keys", util.ErrorField(err))
		} else {
			kmsClient = kms.NewFromConfig(sdkCfg)
			util.Info("KMS client initialized", util.String("key_id", f.config.KMS.KeyID))
		}
	}

	f.encryptionManager = encryption.NewManager(f.config, kmsClient)
}

// initializeServices wires repositories, caches and services over whatever
// clients came up.
func (f *Factory) initializeServices() {
	if f.mongoClient != nil {
		f.userRepository = mongodb.NewUserRepository(f.mongoClient, f.encryptionManager)
	}

	f.profileCache = redisrepo.NewProfileCache(f.redisClient)
	f.rateLimitCache = redisrepo.NewRateLimitCache(f.redisClient)
	f.auditRecorder = audit.NewRecorder(f.kafkaProducer, f.clickhouseClient)

	f.accountService = service.NewAccountService(
		f.userRepository,
		f.hasher,
		f.profileCache,
		f.rateLimitCache,
		f.auditRecorder,
		util.Get(),
	)

	var blob service.BlobStore
	if f.s3Client != nil {
		blob = f.s3Client
	}
	f.kycService = service.NewKYCService(
		f.userRepository,
		blob,
		f.profileCache,
		f.auditRecorder,
		util.Get(),
	)

	var provider service.Provider
	if f.geminiClient != nil {
		provider = f.geminiClient
	}
	f.advisorService = service.NewAdvisorService(provider, f.config.Gemini.Model, util.Get())

	f.statusService = service.NewStatusService(
		f.mongoClient,
		f.s3Client,
		f.redisClient,
		f.kafkaProducer,
		f.clickhouseClient,
		util.Get(),
	)
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) AccountService() *service.AccountService {
	return f.accountService
}

func (f *Factory) KYCService() *service.KYCService {
	return f.kycService
}

func (f *Factory) AdvisorService() *service.AdvisorService {
	return f.advisorService
}

func (f *Factory) StatusService() *service.StatusService {
	return f.statusService
}

// HealthCheck probes every initialized client.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.mongoClient != nil {
		if err := f.mongoClient.HealthCheck(ctx); err != nil {
			healthErrors["mongodb"] = err
		}
	} else {
		healthErrors["mongodb"] = fmt.Errorf("mongo client not initialized")
	}

	if f.s3Client != nil {
		if err := f.s3Client.HealthCheck(ctx); err != nil {
			healthErrors["s3"] = err
		}
	}

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	return healthErrors
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			} else {
				util.Info("Redis client closed")
			}
		}

		if f.mongoClient != nil {
			if err := f.mongoClient.Close(); err != nil {
				util.Error("Failed to close MongoDB client", util.ErrorField(err))
			} else {
				util.Info("MongoDB client closed")
			}
		}

		f.encryptionManager.ClearCache()
		util.Info("Factory shutdown complete")
		util.Sync()
	})
	return nil
}
