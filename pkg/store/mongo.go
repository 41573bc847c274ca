package store

import (
	"context"
	stderrors "errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/token"
)

// Collection names.
const (
	mongoContainers = "containers"
	mongoScripts    = "scripts"
)

// containerDoc is the stored form of a container. The record itself is kept
// as its JSON encoding: portal values are untyped and would not survive a
// BSON round trip in their canonical shapes. Name and shallow id are copied
// out for queries.
type containerDoc struct {
	ID        string `bson:"_id"`
	ShallowID int    `bson:"shallowId"`
	Name      string `bson:"name"`
	Data      string `bson:"data"`
}

type scriptDoc struct {
	ID   int    `bson:"_id"`
	Body string `bson:"body"`
}

func newContainerDoc(rec *token.BundleContainer, data []byte) containerDoc {
	return containerDoc{ID: rec.ID, ShallowID: rec.ShallowID, Name: rec.Name, Data: string(data)}
}

// MongoStore keeps each record as a document.
type MongoStore struct {
	client     *mongo.Client
	containers *mongo.Collection
	scripts    *mongo.Collection
	hooks      observability.StoreHooks
}

// NewMongoStore connects to uri and uses the given database.
func NewMongoStore(ctx context.Context, uri, database string, hooks observability.StoreHooks) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store needs a URI")
	}
	if database == "" {
		database = "behave"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageErr(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageErr(err, "ping mongo")
	}
	db := client.Database(database)
	return &MongoStore{
		client:     client,
		containers: db.Collection(mongoContainers),
		scripts:    db.Collection(mongoScripts),
		hooks:      hooksOrNoop(hooks),
	}, nil
}

func (s *MongoStore) LoadContainer(ctx context.Context, id string) (rec *token.BundleContainer, err error) {
	t := startTimer(s.hooks, BackendMongo)
	defer func() { t.load(ctx, id, rec != nil, err) }()

	var doc containerDoc
	err = s.containers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr(err, "load container %s", id)
	}
	return decode(id, []byte(doc.Data))
}

func (s *MongoStore) SaveContainer(ctx context.Context, rec *token.BundleContainer) (err error) {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	t := startTimer(s.hooks, BackendMongo)
	defer func() { t.save(ctx, rec.ID, len(data), err) }()

	_, err = s.containers.ReplaceOne(ctx, bson.M{"_id": rec.ID}, newContainerDoc(rec, data), options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr(err, "save container %s", rec.ID)
	}
	return nil
}

func (s *MongoStore) DeleteContainer(ctx context.Context, id string) error {
	if _, err := s.containers.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storageErr(err, "delete container %s", id)
	}
	return nil
}

func (s *MongoStore) ListContainers(ctx context.Context) ([]string, error) {
	cur, err := s.containers.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, storageErr(err, "list containers")
	}
	var docs []containerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "list containers")
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MongoStore) ProvisionScript(ctx context.Context, shallowID int) (err error) {
	t := startTimer(s.hooks, BackendMongo)
	defer func() { t.save(ctx, scriptKey(shallowID), 0, err) }()
	_, err = s.scripts.ReplaceOne(ctx, bson.M{"_id": shallowID}, scriptDoc{ID: shallowID}, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr(err, "provision script %d", shallowID)
	}
	return nil
}

func (s *MongoStore) DeleteScript(ctx context.Context, shallowID int) error {
	if _, err := s.scripts.DeleteOne(ctx, bson.M{"_id": shallowID}); err != nil {
		return storageErr(err, "delete script %d", shallowID)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
