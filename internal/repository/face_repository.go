package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identity is an enrolled face: a name and its L2-normalised embedding
// template. Re-enrolling a name replaces the template.
type Identity struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;size:128"`
	Template  []byte    `gorm:"column:template;type:bytea"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (Identity) TableName() string {
	return "identities"
}

// VerificationLog is a persisted verification attempt.
type VerificationLog struct {
	ID               uint      `gorm:"primaryKey"`
	RequestID        string    `gorm:"column:request_id;uniqueIndex;size:64"`
	Match            string    `gorm:"column:match;size:128"`
	Confidence       float64   `gorm:"column:confidence"`
	CosineSimilarity float64   `gorm:"column:cosine_similarity"`
	Threshold        float64   `gorm:"column:threshold"`
	Verified         bool      `gorm:"column:verified"`
	Message          string    `gorm:"column:message;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (VerificationLog) TableName() string {
	return "verification_logs"
}

// EnrolledTemplate is an identity's template decoded for matching.
type EnrolledTemplate struct {
	Name   string
	Vector []float32
}

// FaceRepository provides persistence APIs for identities and verification
// logs.
type FaceRepository struct {
	db *gorm.DB
}

// NewFaceRepository creates a new repository instance.
func NewFaceRepository(db *gorm.DB) *FaceRepository {
	return &FaceRepository{db: db}
}

// AutoMigrate ensures the schema is available.
func (r *FaceRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&Identity{}, &VerificationLog{})
}

// UpsertIdentity stores a template under a name, replacing any previous
// enrollment for the same name.
func (r *FaceRepository) UpsertIdentity(ctx context.Context, name string, template []float32) error {
	encoded, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	identity := Identity{Name: name, Template: encoded, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"template", "updated_at"}),
		}).
		Create(&identity).Error
}

// ListTemplates loads every enrolled identity with its decoded template.
func (r *FaceRepository) ListTemplates(ctx context.Context) ([]EnrolledTemplate, error) {
	var identities []Identity
	if err := r.db.WithContext(ctx).Find(&identities).Error; err != nil {
		return nil, err
	}
	templates := make([]EnrolledTemplate, 0, len(identities))
	for _, identity := range identities {
		var vector []float32
		if err := json.Unmarshal(identity.Template, &vector); err != nil {
			return nil, fmt.Errorf("decode template for %q: %w", identity.Name, err)
		}
		templates = append(templates, EnrolledTemplate{Name: identity.Name, Vector: vector})
	}
	return templates, nil
}

// CountIdentities returns the number of enrolled identities.
func (r *FaceRepository) CountIdentities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Identity{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IdentityNames returns the names of all enrolled identities.
func (r *FaceRepository) IdentityNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&Identity{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// SaveLog persists a verification log entry.
func (r *FaceRepository) SaveLog(ctx context.Context, log *VerificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindLogByRequestID retrieves the verification log for a request.
func (r *FaceRepository) FindLogByRequestID(ctx context.Context, requestID string) (*VerificationLog, error) {
	var log VerificationLog
	if err := r.db.WithContext(ctx).First(&log, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &log, nil
}
