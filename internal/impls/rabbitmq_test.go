package impls

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obImpl struct {
	lock   sync.Mutex
	events []*defs.Event
}

func (impl *obImpl) OnEvent(_ defs.Target, _ uint64, event *defs.Event) {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.events = append(impl.events, event)
}

func (impl *obImpl) count() int {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	return len(impl.events)
}

func TestRabbitMQImpl(t *testing.T) {
	mqURL := os.Getenv("RTM_HARNESS_AMQP")
	if mqURL == "" {
		t.Skip("RTM_HARNESS_AMQP not set")
	}

	mq1, err := NewRabbitMQ(mqURL, l.NewConsoleLoggerWrapper())
	require.Nil(t, err)

	defer mq1.Close()

	ob1 := &obImpl{}
	mq1.SetObserver(ob1)

	mq2, err := NewRabbitMQ(mqURL, l.NewConsoleLoggerWrapper())
	require.Nil(t, err)

	defer mq2.Close()

	ob2 := &obImpl{}
	mq2.SetObserver(ob2)

	room := defs.ChannelTarget("room", defs.ChannelTypeMessage)
	other := defs.ChannelTarget("other", defs.ChannelTypeMessage)

	assert.Nil(t, mq1.AddTrack(room))
	assert.Nil(t, mq2.AddTrack(room))
	assert.Nil(t, mq2.AddTrack(other))

	time.Sleep(time.Second * 2)

	for _, target := range []defs.Target{room, other, other} {
		err = mq2.SendData(&mqData{
			Origin: mq2.InstanceID(),
			Target: target,
			Event: &defs.Event{
				Message: &defs.MessageEvent{
					ChannelType: defs.ChannelTypeMessage,
					ChannelName: target.ChannelName,
					Publisher:   "u1",
					Message:     []byte("hello"),
				},
			},
		})
		assert.Nil(t, err)
	}

	time.Sleep(time.Second * 2)

	assert.EqualValues(t, 1, ob1.count())
	assert.EqualValues(t, 0, ob2.count())
}
