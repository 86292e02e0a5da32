package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

const submissionsCollection = "submissions"

type SubmissionRepository struct {
	col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{col: db.Collection(submissionsCollection)}
}

type mongoSubmission struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Patient           string             `bson:"patient"`
	PatientNotes      string             `bson:"patient_notes,omitempty"`
	AdminNotes        string             `bson:"admin_notes,omitempty"`
	OriginalImageURL  string             `bson:"original_image_url"`
	AnnotatedImageURL string             `bson:"annotated_image_url,omitempty"`
	PDFReportURL      string             `bson:"pdf_report_url,omitempty"`
	Status            string             `bson:"status"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (m *mongoSubmission) toDomain() *domain.Submission {
	return &domain.Submission{
		ID:                m.ID.Hex(),
		PatientID:         m.Patient,
		PatientNotes:      m.PatientNotes,
		AdminNotes:        m.AdminNotes,
		OriginalImageURL:  m.OriginalImageURL,
		AnnotatedImageURL: m.AnnotatedImageURL,
		PDFReportURL:      m.PDFReportURL,
		Status:            domain.SubmissionStatus(m.Status),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

// Create inserts a new submission document and sets s.ID.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSubmission{
		ID:               primitive.NewObjectID(),
		Patient:          s.PatientID,
		PatientNotes:     s.PatientNotes,
		OriginalImageURL: s.OriginalImageURL,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	s.ID = doc.ID.Hex()
	return nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSubmissionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoSubmission
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SubmissionRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Submission, error) {
	return r.find(ctx, bson.M{"patient": patientID})
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]*domain.Submission, error) {
	return r.find(ctx, bson.M{})
}

// SaveReview sets every review field in one document update, so a reader
// never observes a reviewed status without its annotated image.
func (r *SubmissionRepository) SaveReview(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return nil, domain.ErrSubmissionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"admin_notes":         s.AdminNotes,
		"annotated_image_url": s.AnnotatedImageURL,
		"status":              string(s.Status),
		"updated_at":          s.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if s.PDFReportURL != "" {
		set["pdf_report_url"] = s.PDFReportURL
	} else {
		update["$unset"] = bson.M{"pdf_report_url": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoSubmission
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("update submission: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes backing the patient and admin listings.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "patient", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("submissions indexes: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}

	var docs []mongoSubmission
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	out := make([]*domain.Submission, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}
