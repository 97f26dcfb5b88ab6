package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xavierca1/voyage-leads/internal/config"
	"github.com/xavierca1/voyage-leads/internal/entity"
)

// leadDocument is the bson shape of a stored lead. Optional fields carry no
// omitempty so every document has the same keys.
type leadDocument struct {
	ID                  bson.ObjectID     `bson:"_id"`
	ExternalID          *string           `bson:"externalId"`
	Source              entity.LeadSource `bson:"source"`
	Name                *string           `bson:"name"`
	Email               *string           `bson:"email"`
	Phone               *string           `bson:"phone"`
	DepartureCity       *string           `bson:"departureCity"`
	DestinationCity     *string           `bson:"destinationCity"`
	TravelDates         *string           `bson:"travelDates"`
	Passengers          *int              `bson:"passengers"`
	AirlinePreference   *string           `bson:"airlinePreference"`
	SpecialRequirements *string           `bson:"specialRequirements"`
	Summary             string            `bson:"summary"`
	Transcript          string            `bson:"transcript"`
	Language            *entity.Language  `bson:"language"`
	AISummary           *string           `bson:"aiSummary"`
	LeadScore           *float64          `bson:"leadScore"`
	ScoreReasoning      *string           `bson:"scoreReasoning"`
	EnrichedAt          *time.Time        `bson:"enrichedAt"`
	CreatedAt           time.Time         `bson:"createdAt"`
}

// MongoLeadRepository stores leads in a MongoDB collection. Timestamps come
// from the server clock ($$NOW, $currentDate) so every writer shares one order.
type MongoLeadRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOpener connects to MongoDB and prepares the leads collection.
func MongoOpener(cfg config.MongoConfig) Opener {
	return func(ctx context.Context) (entity.LeadStore, error) {
		if cfg.URI == "" {
			return nil, fmt.Errorf("%w: mongo uri is empty", entity.ErrStoreNotConfigured)
		}

		client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, errors.Join(fmt.Errorf("ping mongo: %w", err), client.Disconnect(ctx))
		}

		repo := NewMongoLeadRepository(client, client.Database(cfg.Database).Collection(cfg.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, errors.Join(err, client.Disconnect(ctx))
		}
		return repo, nil
	}
}

func NewMongoLeadRepository(client *mongo.Client, coll *mongo.Collection) *MongoLeadRepository {
	return &MongoLeadRepository{client: client, coll: coll}
}

// EnsureIndexes creates the listing index and the partial unique index on
// externalId. Leads without an externalId are never considered duplicates.
func (r *MongoLeadRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"externalId": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

// Save inserts through an upsert on a fresh _id so createdAt is stamped by
// the server. The stored document is read back for its createdAt.
func (r *MongoLeadRepository) Save(ctx context.Context, lead *entity.StoredLead) (string, error) {
	doc := toDocument(*lead)
	doc.AISummary, doc.LeadScore, doc.ScoreReasoning, doc.EnrichedAt = nil, nil, nil, nil

	pipeline, err := insertPipeline(doc)
	if err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}

	id := bson.NewObjectID()
	var stored leadDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, pipeline, insertOptions()).Decode(&stored)
	if err != nil {
		return "", saveError(err)
	}

	lead.CreatedAt = stored.CreatedAt
	return id.Hex(), nil
}

func (r *MongoLeadRepository) List(ctx context.Context, limit int) ([]entity.LeadRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, listOptions(limit))
	if err != nil {
		return nil, classifyMongo("list leads", err)
	}

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongo("list leads", err)
	}

	leads := make([]entity.LeadRecord, 0, len(docs))
	for _, doc := range docs {
		leads = append(leads, doc.record())
	}
	return leads, nil
}

func (r *MongoLeadRepository) FindByID(ctx context.Context, id string) (*entity.LeadRecord, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}

	var doc leadDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, classifyMongo("find lead", err)
	}

	rec := doc.record()
	return &rec, nil
}

func (r *MongoLeadRepository) UpdateEnrichment(ctx context.Context, id string, patch entity.EnrichmentPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, filter, enrichmentUpdate(patch))
	if err != nil {
		return classifyMongo("update enrichment", err)
	}
	if res.MatchedCount == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *MongoLeadRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoLeadRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// idFilter matches one lead by its hex id. A malformed id cannot name a
// stored lead.
func idFilter(id string) (bson.D, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrLeadNotFound
	}
	return bson.D{{Key: "_id", Value: oid}}, nil
}

// insertPipeline sets every lead field as a literal, so values starting with
// "$" are stored verbatim, and stamps createdAt with the server's $$NOW.
func insertPipeline(doc leadDocument) (mongo.Pipeline, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode lead: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode lead: %w", err)
	}

	set := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if f.Key == "_id" || f.Key == "createdAt" {
			continue
		}
		set = append(set, bson.E{Key: f.Key, Value: bson.D{{Key: "$literal", Value: f.Value}}})
	}
	set = append(set, bson.E{Key: "createdAt", Value: "$$NOW"})
	return mongo.Pipeline{{{Key: "$set", Value: set}}}, nil
}

func insertOptions() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

func listOptions(limit int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(entity.ClampListLimit(limit)))
}

// enrichmentUpdate sets the present patch fields and stamps enrichedAt with
// the server clock.
func enrichmentUpdate(patch entity.EnrichmentPatch) bson.D {
	set := bson.D{}
	if patch.AISummary != nil {
		set = append(set, bson.E{Key: "aiSummary", Value: *patch.AISummary})
	}
	if patch.LeadScore != nil {
		set = append(set, bson.E{Key: "leadScore", Value: *patch.LeadScore})
	}
	if patch.ScoreReasoning != nil {
		set = append(set, bson.E{Key: "scoreReasoning", Value: *patch.ScoreReasoning})
	}
	return bson.D{
		{Key: "$set", Value: set},
		{Key: "$currentDate", Value: bson.D{{Key: "enrichedAt", Value: true}}},
	}
}

func saveError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return entity.ErrLeadAlreadyStored
	}
	return classifyMongo("save lead", err)
}

func classifyMongo(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toDocument(l entity.StoredLead) leadDocument {
	return leadDocument{
		ExternalID:          l.ExternalID,
		Source:              l.Source,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		DepartureCity:       l.DepartureCity,
		DestinationCity:     l.DestinationCity,
		TravelDates:         l.TravelDates,
		Passengers:          l.Passengers,
		AirlinePreference:   l.AirlinePreference,
		SpecialRequirements: l.SpecialRequirements,
		Summary:             l.Summary,
		Transcript:          l.Transcript,
		Language:            l.Language,
		AISummary:           l.AISummary,
		LeadScore:           l.LeadScore,
		ScoreReasoning:      l.ScoreReasoning,
		EnrichedAt:          l.EnrichedAt,
		CreatedAt:           l.CreatedAt,
	}
}

func (d leadDocument) record() entity.LeadRecord {
	return entity.LeadRecord{
		ID: d.ID.Hex(),
		StoredLead: entity.StoredLead{
			ExternalID:          d.ExternalID,
			Source:              d.Source,
			Name:                d.Name,
			Email:               d.Email,
			Phone:               d.Phone,
			DepartureCity:       d.DepartureCity,
			DestinationCity:     d.DestinationCity,
			TravelDates:         d.TravelDates,
			Passengers:          d.Passengers,
			AirlinePreference:   d.AirlinePreference,
			SpecialRequirements: d.SpecialRequirements,
			Summary:             d.Summary,
			Transcript:          d.Transcript,
			Language:            d.Language,
			AISummary:           d.AISummary,
			LeadScore:           d.LeadScore,
			ScoreReasoning:      d.ScoreReasoning,
			EnrichedAt:          d.EnrichedAt,
			CreatedAt:           d.CreatedAt,
		},
	}
}
