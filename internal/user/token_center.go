package user

import (
	"crypto/md5" // nolint:gosec
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/godruoyi/go-snowflake"
	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sgostarter/libeasygo/commerr"
)

// NewTokenCenter returns a Center signing HS256 tokens with appCertificate.
// Without a certificate every non-empty token is accepted and never expires.
func NewTokenCenter(appID, appCertificate string, expireDuration time.Duration, clk clock.Clock) Center {
	if expireDuration < time.Second {
		expireDuration = time.Second
	}

	if clk == nil {
		clk = clock.Real{}
	}

	impl := &tokenCenterImpl{
		appID:          appID,
		expireDuration: expireDuration,
		clk:            clk,
	}

	if appCertificate != "" {
		// nolint: gosec
		h := md5.Sum([]byte(appCertificate))
		impl.secKey = h[:]
	}

	return impl
}

type tokenCenterImpl struct {
	appID          string
	secKey         []byte
	expireDuration time.Duration
	clk            clock.Clock
}

type rtmClaims struct {
	ID          uint64 `json:"id"`
	AppID       string `json:"appId"`
	UserID      string `json:"userId"`
	ChannelName string `json:"channelName,omitempty"`
	jwt.StandardClaims
}

func (impl *tokenCenterImpl) NewToken(userID, channelName string) (token string, expiresAt int64, err error) {
	if userID == "" {
		err = commerr.ErrInvalidArgument

		return
	}

	if impl.secKey == nil {
		token = impl.appID + ":" + userID

		return
	}

	expiresAt = impl.clk.Now().Add(impl.expireDuration).Unix()

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, rtmClaims{
		ID:          snowflake.ID(),
		AppID:       impl.appID,
		UserID:      userID,
		ChannelName: channelName,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt,
		},
	}).SignedString(impl.secKey)

	return
}

func (impl *tokenCenterImpl) VerifyToken(userID, channelName, token string) (userInfo *Info, err error) {
	if token == "" {
		err = commerr.ErrUnauthenticated

		return
	}

	if impl.secKey == nil {
		userInfo = &Info{
			UserID:      userID,
			ChannelName: channelName,
		}

		return
	}

	var claims rtmClaims

	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	parsed, err := parser.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		return impl.secKey, nil
	})
	if err != nil || !parsed.Valid {
		err = commerr.ErrUnauthenticated

		return
	}

	if claims.AppID != impl.appID || claims.UserID != userID {
		err = commerr.ErrUnauthenticated

		return
	}

	if claims.ChannelName != "" && claims.ChannelName != channelName {
		err = commerr.ErrUnauthenticated

		return
	}

	if claims.ExpiresAt > 0 && impl.clk.Now().Unix() >= claims.ExpiresAt {
		err = ErrTokenExpired

		return
	}

	userInfo = &Info{
		ID:          claims.ID,
		UserID:      claims.UserID,
		ChannelName: claims.ChannelName,
		ExpiresAt:   claims.ExpiresAt,
	}

	return
}

func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}
