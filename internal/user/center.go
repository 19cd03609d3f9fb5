package user

import (
	"fmt"
	"time"

	"github.com/sgostarter/libeasygo/commerr"
)

var ErrTokenExpired = fmt.Errorf("token expired: %w", commerr.ErrUnauthenticated)

type Info struct {
	ID          uint64
	UserID      string
	ChannelName string
	ExpiresAt   int64
}

func (info *Info) ExpireTime() (time.Time, bool) {
	if info == nil || info.ExpiresAt == 0 {
		return time.Time{}, false
	}

	return time.Unix(info.ExpiresAt, 0), true
}

// Center issues and verifies the tokens presented on login, renew and stream channel join.
type Center interface {
	NewToken(userID, channelName string) (token string, expiresAt int64, err error)
	VerifyToken(userID, channelName, token string) (userInfo *Info, err error)
}
