package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/faceauth/internal/repository"
	"github.com/example/faceauth/internal/usecase"
)

// MaxImageBytes caps the accepted image payload (base64 data URI included).
const MaxImageBytes = 8 << 20

// FaceService is the use-case surface the handlers depend on.
type FaceService interface {
	EnrollFace(ctx context.Context, name, imageURI string) (string, error)
	VerifyFace(ctx context.Context, imageURI string) (*usecase.VerifyOutcome, error)
	GetResult(ctx context.Context, requestID string) (*repository.VerificationLog, error)
	Status(ctx context.Context) (*usecase.StatusSummary, error)
	Threshold() float64
}

type enrollRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type verifyRequest struct {
	Image string `json:"image"`
}

// RegisterRoutes wires the HTTP handlers to the Gin router. A nil
// authMiddleware leaves the API open, matching deployments without a token
// issuer in front of the app.
func RegisterRoutes(router *gin.Engine, svc FaceService, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/")
	if authMiddleware != nil {
		api.Use(authMiddleware)
	}

	api.POST("/enroll", func(c *gin.Context) {
		var req enrollRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Image == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name or image"})
			return
		}
		if len(req.Image) > MaxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image payload too large"})
			return
		}

		message, err := svc.EnrollFace(c.Request.Context(), req.Name, req.Image)
		if err != nil {
			if errors.Is(err, usecase.ErrNoFace) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "No face detected"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
		})
	})

	api.POST("/verify", func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image"})
			return
		}
		if len(req.Image) > MaxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image payload too large"})
			return
		}

		outcome, err := svc.VerifyFace(c.Request.Context(), req.Image)
		if err != nil {
			if errors.Is(err, usecase.ErrNoneEnrolled) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":             "No users enrolled yet",
					"match":             "Unknown",
					"confidence":        0.0,
					"cosine_similarity": 0.0,
					"threshold":         svc.Threshold(),
					"verified":          false,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":        outcome.RequestID,
			"match":             outcome.Match,
			"confidence":        outcome.Confidence,
			"cosine_similarity": outcome.CosineSimilarity,
			"threshold":         outcome.Threshold,
			"verified":          outcome.Verified,
			"message":           outcome.Message,
		})
	})

	api.GET("/result/:id", func(c *gin.Context) {
		requestID := c.Param("id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		log, err := svc.GetResult(c.Request.Context(), requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":        log.RequestID,
			"match":             log.Match,
			"confidence":        log.Confidence,
			"cosine_similarity": log.CosineSimilarity,
			"threshold":         log.Threshold,
			"verified":          log.Verified,
			"message":           log.Message,
			"created_at":        log.CreatedAt,
		})
	})

	api.GET("/status", func(c *gin.Context) {
		summary, err := svc.Status(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		users := summary.Users
		if users == nil {
			users = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "running",
			"enrolled_users": summary.EnrolledUsers,
			"threshold":      summary.Threshold,
			"users":          users,
		})
	})
}
