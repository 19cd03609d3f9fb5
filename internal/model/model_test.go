package model

import (
	"context"
	"os"
	"testing"

	"github.com/sbasestarter/rtm-harness/config"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testMetadataRoundTrip(t *testing.T, m defs.Model) {
	ctx := context.Background()
	target := defs.ChannelTarget("room", defs.ChannelTypeMessage)

	metadata, err := m.LoadMetadata(ctx, target)
	require.Nil(t, err)
	assert.EqualValues(t, 0, metadata.MajorRevision)
	assert.Empty(t, metadata.Items)

	err = m.SaveMetadata(ctx, target, &defs.Metadata{
		MajorRevision: 2,
		Items: []defs.MetadataItem{
			{Key: "a", Value: "1", Revision: 1},
			{Key: "b", Value: "2", Revision: 2, AuthorUserID: "u1", UpdateTs: 99},
		},
	})
	require.Nil(t, err)

	metadata, err = m.LoadMetadata(ctx, target)
	require.Nil(t, err)
	assert.EqualValues(t, 2, metadata.MajorRevision)

	item, ok := metadata.Item("b")
	assert.True(t, ok)
	assert.EqualValues(t, "u1", item.AuthorUserID)
	assert.EqualValues(t, 99, item.UpdateTs)

	other, err := m.LoadMetadata(ctx, defs.UserTarget("room"))
	require.Nil(t, err)
	assert.Empty(t, other.Items)
}

func testHistory(t *testing.T, m defs.Model) {
	ctx := context.Background()
	channel := defs.ChannelInfo{ChannelName: "room", ChannelType: defs.ChannelTypeMessage}

	for ts := uint64(1); ts <= 5; ts++ {
		require.Nil(t, m.AddHistoryMessage(ctx, channel, &defs.HistoryMessage{
			Publisher: "u1",
			Message:   []byte{byte(ts)},
			Timestamp: ts * 10,
		}))
	}

	messages, newStart, err := m.GetHistoryMessages(ctx, channel, defs.GetHistoryMessagesOptions{MessageCount: 2})
	require.Nil(t, err)
	require.Len(t, messages, 2)
	assert.EqualValues(t, 50, messages[0].Timestamp)
	assert.EqualValues(t, 40, messages[1].Timestamp)
	assert.EqualValues(t, 30, newStart)

	messages, newStart, err = m.GetHistoryMessages(ctx, channel, defs.GetHistoryMessagesOptions{
		MessageCount: 10,
		Start:        newStart,
		End:          10,
	})
	require.Nil(t, err)
	require.Len(t, messages, 2)
	assert.EqualValues(t, 30, messages[0].Timestamp)
	assert.EqualValues(t, 20, messages[1].Timestamp)
	assert.Zero(t, newStart)

	messages, _, err = m.GetHistoryMessages(ctx, defs.ChannelInfo{ChannelName: "other"}, defs.GetHistoryMessagesOptions{})
	require.Nil(t, err)
	assert.Empty(t, messages)

	testHistorySameTimestamp(t, m)
}

func historyBodies(messages []defs.HistoryMessage) (bodies []string) {
	for _, message := range messages {
		bodies = append(bodies, string(message.Message))
	}

	return
}

func testHistorySameTimestamp(t *testing.T, m defs.Model) {
	ctx := context.Background()
	channel := defs.ChannelInfo{ChannelName: "burst", ChannelType: defs.ChannelTypeMessage}

	for _, message := range []defs.HistoryMessage{
		{Message: []byte("a"), Timestamp: 10},
		{Message: []byte("b"), Timestamp: 20},
		{Message: []byte("c"), Timestamp: 20},
		{Message: []byte("d"), Timestamp: 20},
		{Message: []byte("e"), Timestamp: 30},
		{Message: []byte("f"), Timestamp: 30},
	} {
		require.Nil(t, m.AddHistoryMessage(ctx, channel, &message))
	}

	var (
		pages [][]string
		start uint64
	)

	for {
		messages, newStart, err := m.GetHistoryMessages(ctx, channel, defs.GetHistoryMessagesOptions{
			MessageCount: 2,
			Start:        start,
		})
		require.Nil(t, err)

		pages = append(pages, historyBodies(messages))

		if newStart == 0 {
			break
		}

		require.True(t, start == 0 || newStart < start, "newStart %d does not move back from %d", newStart, start)
		start = newStart
	}

	require.Len(t, pages, 3)
	assert.ElementsMatch(t, []string{"e", "f"}, pages[0])
	assert.ElementsMatch(t, []string{"b", "c", "d"}, pages[1])
	assert.Equal(t, []string{"a"}, pages[2])

	messages, newStart, err := m.GetHistoryMessages(ctx, channel, defs.GetHistoryMessagesOptions{MessageCount: 3})
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"e", "f"}, historyBodies(messages))
	assert.EqualValues(t, 20, newStart)
}

func TestMemModel(t *testing.T) {
	testMetadataRoundTrip(t, NewMemModel())
	testHistory(t, NewMemModel())
}

func TestMemHistoryOutOfOrderInsert(t *testing.T) {
	m := NewMemModel()
	channel := defs.ChannelInfo{ChannelName: "s", ChannelType: defs.ChannelTypeStream}

	for _, ts := range []uint64{30, 10, 20} {
		require.Nil(t, m.AddHistoryMessage(context.Background(), channel, &defs.HistoryMessage{Timestamp: ts}))
	}

	messages, _, err := m.GetHistoryMessages(context.Background(), channel, defs.GetHistoryMessagesOptions{})
	require.Nil(t, err)
	require.Len(t, messages, 3)
	assert.EqualValues(t, 30, messages[0].Timestamp)
	assert.EqualValues(t, 10, messages[2].Timestamp)
}

func TestNormalizeHistoryCount(t *testing.T) {
	assert.EqualValues(t, DefaultHistoryCount, NormalizeHistoryCount(0))
	assert.EqualValues(t, 7, NormalizeHistoryCount(7))
	assert.EqualValues(t, DefaultHistoryCount, NormalizeHistoryCount(MaxHistoryCount+1))
}

func TestMongoModel(t *testing.T) {
	server := os.Getenv("RTM_HARNESS_MONGO")
	if server == "" {
		t.Skip("RTM_HARNESS_MONGO not set")
	}

	cfg := &config.MongoConfig{
		Server: server,
		DB:     "rtm_harness_test",
	}

	m, err := NewMongoModel(cfg, nil)
	require.Nil(t, err)

	m1, ok := m.(*mongoModelImpl)
	assert.True(t, ok)

	collectionNames, err := m1.mongoCli.Database(m1.cfg.DB).ListCollectionNames(context.Background(), bson.D{})
	assert.Nil(t, err)

	for _, name := range collectionNames {
		_ = m1.mongoCli.Database(m1.cfg.DB).Collection(name).Drop(context.TODO())
	}

	testMetadataRoundTrip(t, m)
	testHistory(t, m)
}
