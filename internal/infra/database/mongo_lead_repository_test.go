package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

// TestLeadDocumentKeepsNullKeys - unknown fields are stored as explicit nulls
func TestLeadDocumentKeepsNullKeys(t *testing.T) {
	doc := toDocument(entity.StoredLead{Source: entity.SourceElevenLabsPhone, Summary: "No summary provided"})
	doc.ID = bson.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	for _, key := range []string{"externalId", "name", "email", "phone", "passengers", "language", "leadScore", "enrichedAt"} {
		v, ok := m[key]
		assert.True(t, ok, "key %s is missing", key)
		assert.Nil(t, v, "key %s should be null", key)
	}
	assert.Equal(t, "No summary provided", m["summary"])
}

func TestLeadDocumentRecord(t *testing.T) {
	passengers := 2
	lang := entity.LanguageEnglish
	createdAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := entity.StoredLead{
		ExternalID: strPtr("conv-1"),
		Source:     entity.SourceElevenLabsPhone,
		Name:       strPtr("Jane Doe"),
		Passengers: &passengers,
		Language:   &lang,
		CreatedAt:  createdAt,
	}

	doc := toDocument(stored)
	doc.ID = bson.NewObjectID()
	rec := doc.record()

	assert.Equal(t, doc.ID.Hex(), rec.ID)
	assert.Equal(t, stored, rec.StoredLead)
}

func TestClassifyMongo(t *testing.T) {
	assert.ErrorIs(t, classifyMongo("list leads", context.DeadlineExceeded), entity.ErrStoreUnavailable)

	err := classifyMongo("list leads", errors.New("bad query"))
	assert.NotErrorIs(t, err, entity.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "list leads")
}

// TestInsertPipelineStampsServerTime - createdAt comes from $$NOW, never the caller
func TestInsertPipelineStampsServerTime(t *testing.T) {
	doc := toDocument(entity.StoredLead{
		ExternalID: strPtr("conv-1"),
		Source:     entity.SourceElevenLabsPhone,
		Name:       strPtr("$where"),
		CreatedAt:  time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	pipeline, err := insertPipeline(doc)
	require.NoError(t, err)
	require.Len(t, pipeline, 1)
	require.Equal(t, "$set", pipeline[0][0].Key)

	set := pipeline[0][0].Value.(bson.D)
	fields := make(map[string]any, len(set))
	for _, f := range set {
		fields[f.Key] = f.Value
	}

	assert.Equal(t, "$$NOW", fields["createdAt"])
	assert.NotContains(t, fields, "_id")
	assert.Equal(t, bson.D{{Key: "$literal", Value: "$where"}}, fields["name"], "user values are literals")
	assert.Equal(t, bson.D{{Key: "$literal", Value: "conv-1"}}, fields["externalId"])
	assert.Equal(t, bson.D{{Key: "$literal", Value: nil}}, fields["email"], "unknown fields stay null")
	assert.Contains(t, fields, "enrichedAt")
}

func TestInsertOptions(t *testing.T) {
	var o options.FindOneAndUpdateOptions
	for _, set := range insertOptions().List() {
		require.NoError(t, set(&o))
	}

	require.NotNil(t, o.Upsert)
	assert.True(t, *o.Upsert)
	require.NotNil(t, o.ReturnDocument)
	assert.Equal(t, options.After, *o.ReturnDocument)
}

func TestListOptions(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int64
	}{
		{"Within Range", 5, 5},
		{"Above Cap", 500, entity.MaxListLimit},
		{"Zero", 0, entity.MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o options.FindOptions
			for _, set := range listOptions(tt.limit).List() {
				require.NoError(t, set(&o))
			}

			require.NotNil(t, o.Limit)
			assert.Equal(t, tt.want, *o.Limit)
			assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, o.Sort)
		})
	}
}

func TestEnrichmentUpdate(t *testing.T) {
	score := 72.0
	update := enrichmentUpdate(entity.EnrichmentPatch{LeadScore: &score, ScoreReasoning: strPtr("Warm")})

	assert.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "leadScore", Value: 72.0},
			{Key: "scoreReasoning", Value: "Warm"},
		}},
		{Key: "$currentDate", Value: bson.D{{Key: "enrichedAt", Value: true}}},
	}, update)
}

func TestIDFilter(t *testing.T) {
	oid := bson.NewObjectID()

	filter, err := idFilter(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}}, filter)

	_, err = idFilter("not-an-object-id")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestMongoMalformedIDIsNotFound(t *testing.T) {
	repo := NewMongoLeadRepository(nil, nil)

	_, err := repo.FindByID(context.Background(), "lead-1")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	err = repo.UpdateEnrichment(context.Background(), "lead-1", entity.EnrichmentPatch{AISummary: strPtr("x")})
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	assert.NoError(t, repo.UpdateEnrichment(context.Background(), "lead-1", entity.EnrichmentPatch{}))
}

func TestSaveError(t *testing.T) {
	dupWrite := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
	dupCommand := mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}

	assert.ErrorIs(t, saveError(dupWrite), entity.ErrLeadAlreadyStored)
	assert.ErrorIs(t, saveError(dupCommand), entity.ErrLeadAlreadyStored)
	assert.ErrorIs(t, saveError(context.DeadlineExceeded), entity.ErrStoreUnavailable)

	err := saveError(errors.New("document too large"))
	assert.NotErrorIs(t, err, entity.ErrLeadAlreadyStored)
	assert.Contains(t, err.Error(), "save lead")
}
