package user

import (
	"testing"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sgostarter/libeasygo/commerr"
	"github.com/stretchr/testify/assert"
)

func TestTokenCenter(t *testing.T) {
	clk := clock.NewManual(time.Unix(1700000000, 0))

	impl := NewTokenCenter("app", "cert", time.Minute, clk)

	token, expiresAt, err := impl.NewToken("u1", "")
	assert.Nil(t, err)
	assert.EqualValues(t, 1700000060, expiresAt)

	userInfo, err := impl.VerifyToken("u1", "", token)
	assert.Nil(t, err)
	assert.EqualValues(t, "u1", userInfo.UserID)
	assert.NotZero(t, userInfo.ID)

	_, err = impl.VerifyToken("u2", "", token)
	assert.ErrorIs(t, err, commerr.ErrUnauthenticated)
	assert.False(t, IsTokenExpired(err))

	clk.Advance(time.Minute)

	_, err = impl.VerifyToken("u1", "", token)
	assert.True(t, IsTokenExpired(err))
	assert.ErrorIs(t, err, commerr.ErrUnauthenticated)
}

func TestTokenCenterChannelBound(t *testing.T) {
	impl := NewTokenCenter("app", "cert", time.Hour, nil)

	token, _, err := impl.NewToken("u1", "stream1")
	assert.Nil(t, err)

	_, err = impl.VerifyToken("u1", "stream1", token)
	assert.Nil(t, err)

	_, err = impl.VerifyToken("u1", "stream2", token)
	assert.NotNil(t, err)
}

func TestTokenCenterOtherCertificate(t *testing.T) {
	token, _, err := NewTokenCenter("app", "a", time.Hour, nil).NewToken("u1", "")
	assert.Nil(t, err)

	_, err = NewTokenCenter("app", "b", time.Hour, nil).VerifyToken("u1", "", token)
	assert.ErrorIs(t, err, commerr.ErrUnauthenticated)

	_, err = NewTokenCenter("app", "b", time.Hour, nil).VerifyToken("u1", "", "garbage")
	assert.ErrorIs(t, err, commerr.ErrUnauthenticated)
}

func TestTokenCenterWithoutCertificate(t *testing.T) {
	impl := NewTokenCenter("app", "", time.Hour, nil)

	token, expiresAt, err := impl.NewToken("u1", "")
	assert.Nil(t, err)
	assert.Zero(t, expiresAt)

	userInfo, err := impl.VerifyToken("u1", "", "anything")
	assert.Nil(t, err)

	_, ok := userInfo.ExpireTime()
	assert.False(t, ok)

	_, err = impl.VerifyToken("u1", "", "")
	assert.NotNil(t, err)
	assert.NotEmpty(t, token)
}
