package rtm

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClient(t *testing.T) {
	h := newTestHarness(t, nil)

	server := transport.NewServer(h.Backend(), nil, nil)

	srv := httptest.NewServer(server)
	defer srv.Close()

	conn, err := transport.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil, nil)
	require.NoError(t, err)

	defer conn.Close()

	bob, rb := loggedIn(t, h, "bob")

	requestID, err := bob.Subscribe("ch", nil)
	require.NoError(t, err)
	rb.expect(t, "Subscribe", requestID, ErrorCodeOK)

	alice, ra := newTestClient(t, conn, "alice")

	token, err := h.NewToken("alice", "")
	require.NoError(t, err)

	requestID, err = alice.Login(token)
	require.NoError(t, err)
	ra.expect(t, "Login", requestID, ErrorCodeOK)

	requestID, err = alice.Publish("ch", []byte("over the wire"), nil)
	require.NoError(t, err)
	ra.expect(t, "Publish", requestID, ErrorCodeOK)

	select {
	case event := <-rb.messages:
		assert.Equal(t, "alice", event.Publisher)
		assert.Equal(t, []byte("over the wire"), event.Message)
	case <-time.After(waitTimeout):
		require.FailNow(t, "no message")
	}

	server.Close()

	deadline := time.After(waitTimeout)

	for {
		select {
		case event := <-ra.linkState:
			if event.CurrentState != LinkStateDisconnected {
				continue
			}

			assert.Equal(t, LinkStateConnected, event.PreviousState)
		case <-deadline:
			require.FailNow(t, "no disconnect")
		}

		break
	}

	_, err = alice.Publish("ch", []byte("late"), nil)
	assert.Equal(t, ErrorCodeNotConnected, CodeOf(err))
}
