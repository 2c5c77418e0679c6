package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/faceauth/internal/embedder"
	"github.com/example/faceauth/internal/imageenc"
	"github.com/example/faceauth/internal/logging"
	"github.com/example/faceauth/internal/repository"
)

// ErrNoFace reports that the embedder found no face in the submitted image.
var ErrNoFace = errors.New("no face detected")

// ErrNoneEnrolled reports a verify attempt against an empty identity store.
var ErrNoneEnrolled = errors.New("no users enrolled yet")

// FaceRepository defines the persistence operations needed by the use case.
type FaceRepository interface {
	UpsertIdentity(ctx context.Context, name string, template []float32) error
	ListTemplates(ctx context.Context) ([]repository.EnrolledTemplate, error)
	CountIdentities(ctx context.Context) (int64, error)
	IdentityNames(ctx context.Context) ([]string, error)
	SaveLog(ctx context.Context, log *repository.VerificationLog) error
	FindLogByRequestID(ctx context.Context, requestID string) (*repository.VerificationLog, error)
}

// FaceUseCase encapsulates the business logic behind the enroll and verify
// endpoints: embedding extraction, template matching, persistence, and
// result caching.
type FaceUseCase struct {
	repo           FaceRepository
	cache          Cache
	embedder       embedder.Client
	logger         *zap.Logger
	threshold      float64
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// VerifyOutcome is the classification of one verification attempt, shaped
// for the wire response.
type VerifyOutcome struct {
	RequestID        string
	Match            string
	Confidence       float64
	CosineSimilarity float64
	Threshold        float64
	Verified         bool
	Message          string
}

// StatusSummary reports the service's enrollment state.
type StatusSummary struct {
	EnrolledUsers int64
	Threshold     float64
	Users         []string
}

type cachedVerification struct {
	RequestID        string    `json:"request_id"`
	Match            string    `json:"match"`
	Confidence       float64   `json:"confidence"`
	CosineSimilarity float64   `json:"cosine_similarity"`
	Threshold        float64   `json:"threshold"`
	Verified         bool      `json:"verified"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewFaceUseCase constructs a new use case instance.
func NewFaceUseCase(repo FaceRepository, cache Cache, embedderClient embedder.Client, threshold float64, logger *zap.Logger) *FaceUseCase {
	return &FaceUseCase{
		repo:           repo,
		cache:          cache,
		embedder:       embedderClient,
		logger:         logger.Named("face_usecase"),
		threshold:      threshold,
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// Threshold returns the similarity threshold the service enforces.
func (uc *FaceUseCase) Threshold() float64 {
	return uc.threshold
}

// EnrollFace stores a normalised template for the named identity and returns
// the acknowledgment message.
func (uc *FaceUseCase) EnrollFace(ctx context.Context, name, imageURI string) (string, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.enroll_face", "")

	template, err := uc.extractTemplate(ctx, imageURI)
	if err != nil {
		opLogger.Warn("enrollment rejected", zap.String("name", name), zap.Error(err))
		return "", err
	}

	if err := uc.repo.UpsertIdentity(ctx, name, template); err != nil {
		wrapped := logging.NewOperationError("usecase.upsert_identity", "", err)
		opLogger.Error("failed to persist identity", zap.Error(wrapped))
		return "", wrapped
	}

	opLogger.Info("identity enrolled", zap.String("name", name))
	return fmt.Sprintf("User '%s' enrolled successfully.", name), nil
}

// VerifyFace matches a live image against every enrolled template and
// returns the best-match classification. The attempt is persisted and
// cached under a fresh request id.
func (uc *FaceUseCase) VerifyFace(ctx context.Context, imageURI string) (*VerifyOutcome, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify_face", requestID)

	cacheKey := fmt.Sprintf("verification:%s", requestID)
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, "processing", time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return nil, err
	}

	template, err := uc.extractTemplate(ctx, imageURI)
	if err != nil {
		if errors.Is(err, ErrNoFace) {
			outcome := &VerifyOutcome{
				RequestID: requestID,
				Match:     "No face detected",
				Threshold: uc.threshold,
				Message:   "No face detected in the image",
			}
			return outcome, uc.recordOutcome(ctx, opLogger, cacheKey, outcome)
		}
		opLogger.Error("failed to extract template", zap.Error(err))
		return nil, err
	}

	enrolled, err := uc.repo.ListTemplates(ctx)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.list_templates", requestID, err)
		opLogger.Error("failed to load enrolled templates", zap.Error(wrapped))
		return nil, wrapped
	}
	if len(enrolled) == 0 {
		return nil, ErrNoneEnrolled
	}

	bestName := "Unknown"
	bestScore := -1.0
	for _, candidate := range enrolled {
		score := cosineSimilarity(template, candidate.Vector)
		if score > bestScore {
			bestScore = score
			if score >= uc.threshold {
				bestName = candidate.Name
			}
		}
	}

	verified := bestScore >= uc.threshold && bestName != "Unknown"
	outcome := &VerifyOutcome{
		RequestID:        requestID,
		Confidence:       clamp01(bestScore),
		CosineSimilarity: bestScore,
		Threshold:        uc.threshold,
		Verified:         verified,
	}
	if verified {
		outcome.Match = bestName
		outcome.Message = fmt.Sprintf("Best match: %s with similarity %.4f", bestName, bestScore)
	} else {
		outcome.Match = "No match found"
		outcome.Message = fmt.Sprintf("No sufficient match found. Best similarity: %.4f", bestScore)
	}

	opLogger.Info("verification classified",
		zap.String("match", bestName),
		zap.Float64("similarity", bestScore),
		zap.Bool("verified", verified),
	)
	return outcome, uc.recordOutcome(ctx, opLogger, cacheKey, outcome)
}

// GetResult retrieves a verification outcome from the cache, falling back to
// persistence.
func (uc *FaceUseCase) GetResult(ctx context.Context, requestID string) (*repository.VerificationLog, error) {
	cacheKey := fmt.Sprintf("verification:%s", requestID)
	if cached, err := uc.withRedisGet(ctx, requestID, "cache.get.result", cacheKey); err == nil {
		var payload cachedVerification
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to decode cached result", zap.Error(err))
		} else if payload.RequestID != "" {
			return &repository.VerificationLog{
				RequestID:        payload.RequestID,
				Match:            payload.Match,
				Confidence:       payload.Confidence,
				CosineSimilarity: payload.CosineSimilarity,
				Threshold:        payload.Threshold,
				Verified:         payload.Verified,
				Message:          payload.Message,
				CreatedAt:        payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to read cache", zap.Error(err))
	}

	return uc.repo.FindLogByRequestID(ctx, requestID)
}

// Status summarises the enrollment state for the status endpoint.
func (uc *FaceUseCase) Status(ctx context.Context) (*StatusSummary, error) {
	count, err := uc.repo.CountIdentities(ctx)
	if err != nil {
		return nil, err
	}
	names, err := uc.repo.IdentityNames(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusSummary{
		EnrolledUsers: count,
		Threshold:     uc.threshold,
		Users:         names,
	}, nil
}

// extractTemplate decodes the image payload, obtains its embedding, and
// returns the unit-length template. ErrNoFace when the embedder found none.
func (uc *FaceUseCase) extractTemplate(ctx context.Context, imageURI string) ([]float32, error) {
	imageBytes, err := imageenc.DecodeDataURI(imageURI)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	result, err := uc.embedder.Embed(ctx, imageBytes)
	if err != nil {
		return nil, logging.NewOperationError("usecase.embed_image", "", err)
	}
	if !result.Found || len(result.Vector) == 0 {
		return nil, ErrNoFace
	}
	return l2Normalise(result.Vector), nil
}

// recordOutcome persists the attempt and caches the serialized outcome.
func (uc *FaceUseCase) recordOutcome(ctx context.Context, opLogger *zap.Logger, cacheKey string, outcome *VerifyOutcome) error {
	now := time.Now().UTC()
	log := &repository.VerificationLog{
		RequestID:        outcome.RequestID,
		Match:            outcome.Match,
		Confidence:       outcome.Confidence,
		CosineSimilarity: outcome.CosineSimilarity,
		Threshold:        outcome.Threshold,
		Verified:         outcome.Verified,
		Message:          outcome.Message,
		CreatedAt:        now,
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", outcome.RequestID, err)
		opLogger.Error("failed to persist verification log", zap.Error(wrapped))
		return wrapped
	}

	serialized, err := json.Marshal(cachedVerification{
		RequestID:        outcome.RequestID,
		Match:            outcome.Match,
		Confidence:       outcome.Confidence,
		CosineSimilarity: outcome.CosineSimilarity,
		Threshold:        outcome.Threshold,
		Verified:         outcome.Verified,
		Message:          outcome.Message,
		CreatedAt:        now,
	})
	if err != nil {
		opLogger.Error("failed to serialize verification result", zap.Error(err))
		return err
	}

	if err := uc.withRedisRetry(ctx, outcome.RequestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), 5*time.Minute)
	}); err != nil {
		opLogger.Error("failed to cache verification result", zap.Error(err))
		return err
	}
	return nil
}

func (uc *FaceUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		err := fn()
		return logging.NewOperationError(operation, requestID, err)
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *FaceUseCase) withRedisGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
