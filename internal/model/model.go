package model

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/config"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionMetadata = "metadata"
	collectionHistory  = "history"
)

type metadataItemDoc struct {
	Key          string `bson:"Key"`
	Value        string `bson:"Value"`
	AuthorUserID string `bson:"AuthorUserID,omitempty"`
	Revision     int64  `bson:"Revision"`
	UpdateTs     int64  `bson:"UpdateTs,omitempty"`
}

type metadataDoc struct {
	ID            string            `bson:"_id"`
	MajorRevision int64             `bson:"MajorRevision"`
	Items         []metadataItemDoc `bson:"Items"`
}

type historyDoc struct {
	ChannelName string           `bson:"ChannelName"`
	ChannelType defs.ChannelType `bson:"ChannelType"`
	MessageType defs.MessageType `bson:"MessageType"`
	Publisher   string           `bson:"Publisher"`
	Message     []byte           `bson:"Message"`
	CustomType  string           `bson:"CustomType,omitempty"`
	Timestamp   uint64           `bson:"Timestamp"`
}

func NewMongoModel(cfg *config.MongoConfig, logger l.Wrapper) (defs.Model, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if cfg == nil {
		return nil, errors.New("no mongo config")
	}

	mongoServer := cfg.Server
	if !strings.HasPrefix(mongoServer, "mongodb://") {
		mongoServer = "mongodb://" + mongoServer
	}

	clientOptions := options.Client().ApplyURI(mongoServer)
	if cfg.UserName != "" {
		clientOptions.SetAuth(options.Credential{
			AuthSource: cfg.DB,
			Username:   cfg.UserName,
			Password:   cfg.Password,
		})
	}

	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	err = client.Ping(context.TODO(), nil)
	if err != nil {
		logger.WithFields(l.ErrorField(err)).Error("MongoPing")

		return nil, errors.Wrap(err, "mongo ping")
	}

	return &mongoModelImpl{
		cfg:      cfg,
		mongoCli: client,
		logger:   logger.WithFields(l.StringField(l.ClsKey, "mongoModelImpl")),
	}, nil
}

type mongoModelImpl struct {
	cfg      *config.MongoConfig
	mongoCli *mongo.Client
	logger   l.Wrapper
}

func (m *mongoModelImpl) LoadMetadata(ctx context.Context, target defs.Target) (metadata *defs.Metadata, err error) {
	var doc metadataDoc

	err = m.mongoCli.Database(m.cfg.DB).Collection(collectionMetadata).FindOne(ctx, bson.M{
		"_id": target.Key(),
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &defs.Metadata{}, nil
	}

	if err != nil {
		err = errors.Wrapf(err, "load metadata %s", target.Key())

		return
	}

	metadata = &defs.Metadata{
		MajorRevision: doc.MajorRevision,
		Items:         make([]defs.MetadataItem, 0, len(doc.Items)),
	}

	for _, item := range doc.Items {
		metadata.Items = append(metadata.Items, defs.MetadataItem{
			Key:          item.Key,
			Value:        item.Value,
			AuthorUserID: item.AuthorUserID,
			Revision:     item.Revision,
			UpdateTs:     item.UpdateTs,
		})
	}

	return
}

func (m *mongoModelImpl) SaveMetadata(ctx context.Context, target defs.Target, metadata *defs.Metadata) error {
	if metadata == nil {
		metadata = &defs.Metadata{}
	}

	doc := metadataDoc{
		ID:            target.Key(),
		MajorRevision: metadata.MajorRevision,
		Items:         make([]metadataItemDoc, 0, len(metadata.Items)),
	}

	for _, item := range metadata.Items {
		doc.Items = append(doc.Items, metadataItemDoc{
			Key:          item.Key,
			Value:        item.Value,
			AuthorUserID: item.AuthorUserID,
			Revision:     item.Revision,
			UpdateTs:     item.UpdateTs,
		})
	}

	_, err := m.mongoCli.Database(m.cfg.DB).Collection(collectionMetadata).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "save metadata %s", target.Key())
	}

	return nil
}

func (m *mongoModelImpl) AddHistoryMessage(ctx context.Context, channel defs.ChannelInfo, message *defs.HistoryMessage) error {
	if message == nil {
		return errors.New("nil history message")
	}

	_, err := m.mongoCli.Database(m.cfg.DB).Collection(collectionHistory).InsertOne(ctx, &historyDoc{
		ChannelName: channel.ChannelName,
		ChannelType: channel.ChannelType,
		MessageType: message.MessageType,
		Publisher:   message.Publisher,
		Message:     message.Message,
		CustomType:  message.CustomType,
		Timestamp:   message.Timestamp,
	})

	return errors.Wrap(err, "add history message")
}

func (m *mongoModelImpl) GetHistoryMessages(ctx context.Context, channel defs.ChannelInfo,
	opts defs.GetHistoryMessagesOptions) (messages []defs.HistoryMessage, newStart uint64, err error) {
	count := NormalizeHistoryCount(opts.MessageCount)

	tsFilter := bson.M{"$gt": opts.End}
	if opts.Start > 0 {
		tsFilter["$lte"] = opts.Start
	}

	candidates, err := m.findHistory(ctx, channel, tsFilter, int64(count+1))
	if err != nil {
		return
	}

	if len(candidates) > count && candidates[0].Timestamp == candidates[count].Timestamp {
		boundary := candidates[0].Timestamp

		if candidates, err = m.findHistory(ctx, channel, bson.M{"$eq": boundary}, 0); err != nil {
			return
		}

		var older []defs.HistoryMessage

		if older, err = m.findHistory(ctx, channel, bson.M{"$gt": opts.End, "$lt": boundary}, 1); err != nil {
			return
		}

		candidates = append(candidates, older...)
	}

	messages, newStart = pageHistory(candidates, count)

	return
}

func (m *mongoModelImpl) findHistory(ctx context.Context, channel defs.ChannelInfo, tsFilter bson.M,
	limit int64) ([]defs.HistoryMessage, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "Timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := m.mongoCli.Database(m.cfg.DB).Collection(collectionHistory).Find(ctx, bson.M{
		"ChannelName": channel.ChannelName,
		"ChannelType": channel.ChannelType,
		"Timestamp":   tsFilter,
	}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find history messages")
	}

	var docs []historyDoc

	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode history messages")
	}

	messages := make([]defs.HistoryMessage, 0, len(docs))

	for _, doc := range docs {
		messages = append(messages, defs.HistoryMessage{
			MessageType: doc.MessageType,
			Publisher:   doc.Publisher,
			Message:     doc.Message,
			CustomType:  doc.CustomType,
			Timestamp:   doc.Timestamp,
		})
	}

	return messages, nil
}
