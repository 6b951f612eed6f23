// Package mongo implements store.Store on MongoDB. Collection and field names
// match the documents the clinic front end already reads.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// Collection names.
const (
	PhlebotomistCollection = "phlebotomists"
	SampleCollection       = "due-sample"
	UserCollection         = "users"
)

// Store is a MongoDB backed store.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Open connects to uri and verifies the primary answers.
func Open(ctx context.Context, uri, appName string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	opts := options.Client().ApplyURI(uri)
	if appName != "" {
		opts.SetAppName(appName)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// New wraps a connected client. Close disconnects it.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) Phlebotomists() store.Phlebotomists {
	return phlebotomistStore{s.db.Collection(PhlebotomistCollection)}
}

func (s *Store) Samples() store.Samples {
	return sampleStore{s.db.Collection(SampleCollection)}
}

func (s *Store) Users() store.Users {
	return userStore{s.db.Collection(UserCollection)}
}

// Migrate creates the unique and lookup indexes. CreateMany is a no-op for
// indexes that already exist with the same definition.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		PhlebotomistCollection: {
			{Keys: bson.D{{Key: "phlebotomist_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		SampleCollection: {
			{Keys: bson.D{{Key: "invoice", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "filterDate", Value: 1}}},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo migrate %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// HealthPing pings the primary.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func dupErr(err error, key string) error {
	if mongo.IsDuplicateKeyError(err) {
		return &store.DuplicateKeyError{Key: key, Err: err}
	}
	return err
}

// objectID parses a hex id. ok is false for ids no document can have.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func insertedHex(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func deleteByID(ctx context.Context, c *mongo.Collection, id string) (model.DeleteResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.DeleteResult{Acknowledged: true}, nil
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return model.DeleteResult{}, err
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func updateResult(res *mongo.UpdateResult) model.UpdateResult {
	return model.UpdateResult{Acknowledged: true, MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}
}

type phlebotomistStore struct{ c *mongo.Collection }

func (ps phlebotomistStore) Create(ctx context.Context, p *model.Phlebotomist) (string, error) {
	res, err := ps.c.InsertOne(ctx, toPhlebotomistDoc(p))
	if err != nil {
		return "", dupErr(err, store.KeyPhlebotomistID)
	}
	p.ID = insertedHex(res)
	return p.ID, nil
}

func (ps phlebotomistStore) GetByExternalID(ctx context.Context, externalID string) (*model.Phlebotomist, error) {
	var d phlebotomistDoc
	err := ps.c.FindOne(ctx, bson.M{"phlebotomist_id": externalID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.model(), nil
}

func (ps phlebotomistStore) List(ctx context.Context, q query.Query) ([]*model.Phlebotomist, error) {
	cur, err := ps.c.Find(ctx, filterDoc(q.Filter), findOptions(q))
	if err != nil {
		return nil, err
	}
	var docs []phlebotomistDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Phlebotomist, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (ps phlebotomistStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	return ps.c.CountDocuments(ctx, filterDoc(f))
}

func (ps phlebotomistStore) Update(ctx context.Context, id string, fields model.PhlebotomistFields) (model.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.UpdateResult{Acknowledged: true}, nil
	}
	set := bson.M{}
	for k, v := range fields.Attributes {
		set[k] = v
	}
	if fields.ExternalID != nil {
		set["phlebotomist_id"] = *fields.ExternalID
	}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if len(set) == 0 {
		n, err := ps.c.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return model.UpdateResult{}, err
		}
		return model.UpdateResult{Acknowledged: true, MatchedCount: n}, nil
	}
	res, err := ps.c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return model.UpdateResult{}, dupErr(err, store.KeyPhlebotomistID)
	}
	return updateResult(res), nil
}

func (ps phlebotomistStore) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return deleteByID(ctx, ps.c, id)
}

type sampleStore struct{ c *mongo.Collection }

func (ss sampleStore) Create(ctx context.Context, s *model.Sample) (string, error) {
	res, err := ss.c.InsertOne(ctx, toSampleDoc(s))
	if err != nil {
		return "", dupErr(err, store.KeyInvoice)
	}
	s.ID = insertedHex(res)
	return s.ID, nil
}

func (ss sampleStore) GetByID(ctx context.Context, id string) (*model.Sample, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	var d sampleDoc
	err := ss.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.model(), nil
}

func (ss sampleStore) List(ctx context.Context, q query.Query) ([]*model.Sample, error) {
	cur, err := ss.c.Find(ctx, filterDoc(q.Filter), findOptions(q))
	if err != nil {
		return nil, err
	}
	var docs []sampleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Sample, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (ss sampleStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	return ss.c.CountDocuments(ctx, filterDoc(f))
}

// Update applies the field merge with $set and the snapshot with $addToSet in
// a single update.
func (ss sampleStore) Update(ctx context.Context, id string, u model.SampleUpdate) (model.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.UpdateResult{Acknowledged: true}, nil
	}
	doc := sampleUpdateDoc(u)
	if len(doc) == 0 {
		n, err := ss.c.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return model.UpdateResult{}, err
		}
		return model.UpdateResult{Acknowledged: true, MatchedCount: n}, nil
	}
	res, err := ss.c.UpdateOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return model.UpdateResult{}, dupErr(err, store.KeyInvoice)
	}
	return updateResult(res), nil
}

func sampleUpdateDoc(u model.SampleUpdate) bson.M {
	set := bson.M{}
	for k, v := range u.Fields.Attributes {
		set[k] = v
	}
	if f := u.Fields; f.Invoice != nil {
		set["invoice"] = *f.Invoice
	}
	if f := u.Fields; f.Status != nil {
		set["status"] = *f.Status
	}
	if f := u.Fields; f.PhlebotomistID != nil {
		set["phlebotomist_id"] = *f.PhlebotomistID
	}
	if !u.UpdatedAt.IsZero() {
		set["updatedAt"] = u.UpdatedAt
	}
	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if u.AppendSnapshot != nil {
		doc["$addToSet"] = bson.M{"phlebotomist": snapshotDoc(*u.AppendSnapshot)}
	}
	return doc
}

func (ss sampleStore) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return deleteByID(ctx, ss.c, id)
}

type userStore struct{ c *mongo.Collection }

func (us userStore) Create(ctx context.Context, u *model.User) error {
	_, err := us.c.InsertOne(ctx, userDoc{Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role, CreatedAt: u.CreatedAt})
	return dupErr(err, store.KeyEmail)
}

func (us userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var d userDoc
	err := us.c.FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &model.User{Email: d.Email, PasswordHash: d.PasswordHash, Role: d.Role, CreatedAt: d.CreatedAt}, nil
}
