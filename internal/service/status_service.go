package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trustvest-backend/internal/client"
	"trustvest-backend/internal/util"
)

const probeTimeout = 3 * time.Second

// StatusService reports liveness of the backing systems. Every dependency is
// optional; a nil client reports as not configured rather than failing the
// endpoint.
type StatusService struct {
	mongo      *client.MongoClient
	s3         *client.S3Client
	redis      *client.RedisClient
	kafka      *client.KafkaProducer
	clickhouse *client.ClickHouseClient
	logger     *zap.Logger
}

// HealthResponse is the root endpoint body.
type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
}

// StatusResponse is the connectivity report for every configured backend.
type StatusResponse struct {
	MongoDB    string `json:"mongodb"`
	AWSS3      string `json:"aws_s3"`
	AWSS3Error string `json:"aws_s3_error,omitempty"`
	Redis      string `json:"redis"`
	Kafka      string `json:"kafka"`
	ClickHouse string `json:"clickhouse"`
}

func NewStatusService(
	mongo *client.MongoClient,
	s3 *client.S3Client,
	redis *client.RedisClient,
	kafka *client.KafkaProducer,
	clickhouse *client.ClickHouseClient,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		mongo:      mongo,
		s3:         s3,
		redis:      redis,
		kafka:      kafka,
		clickhouse: clickhouse,
		logger:     logger,
	}
}

// Health pings the credential store only. The service itself is always "ok";
// the database field tells callers whether persistence is reachable.
func (s *StatusService) Health(ctx context.Context) *HealthResponse {
	database := "disconnected"
	if s.mongo != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := s.mongo.HealthCheck(probeCtx); err == nil {
			database = "connected"
		}
	}
	return &HealthResponse{
		Status:   "ok",
		Message:  "TrustVest AI Backend is running",
		Database: database,
	}
}

// Status probes every configured backend in parallel. Probe failures are
// reported in the body, never as an endpoint error.
func (s *StatusService) Status(ctx context.Context) *StatusResponse {
	response := &StatusResponse{
		MongoDB:    "not_configured",
		AWSS3:      "not_configured",
		Redis:      "not_configured",
		Kafka:      "not_configured",
		ClickHouse: "not_configured",
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(probeCtx)

	if s.mongo != nil {
		group.Go(func() error {
			status := s.probe(groupCtx, "mongodb", s.mongo.HealthCheck)
			mu.Lock()
			response.MongoDB = status
			mu.Unlock()
			return nil
		})
	}
	if s.s3 != nil {
		group.Go(func() error {
			status := "connected"
			if err := s.s3.HealthCheck(groupCtx); err != nil {
				s.logger.Warn("health probe failed", util.String("target", "aws_s3"), util.ErrorField(err))
				status = "configured"
				mu.Lock()
				response.AWSS3Error = err.Error()
				mu.Unlock()
			}
			mu.Lock()
			response.AWSS3 = status
			mu.Unlock()
			return nil
		})
	}
	if s.redis != nil {
		group.Go(func() error {
			status := s.probe(groupCtx, "redis", s.redis.HealthCheck)
			mu.Lock()
			response.Redis = status
			mu.Unlock()
			return nil
		})
	}
	if s.kafka != nil {
		group.Go(func() error {
			status := s.probe(groupCtx, "kafka", s.kafka.HealthCheck)
			mu.Lock()
			response.Kafka = status
			mu.Unlock()
			return nil
		})
	}
	if s.clickhouse != nil {
		group.Go(func() error {
			status := s.probe(groupCtx, "clickhouse", s.clickhouse.HealthCheck)
			mu.Lock()
			response.ClickHouse = status
			mu.Unlock()
			return nil
		})
	}

	group.Wait()
	return response
}

func (s *StatusService) probe(ctx context.Context, target string, check func(context.Context) error) string {
	if err := check(ctx); err != nil {
		s.logger.Warn("health probe failed", util.String("target", target), util.ErrorField(err))
		return "disconnected"
	}
	return "connected"
}
