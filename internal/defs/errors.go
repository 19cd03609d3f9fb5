package defs

import "strconv"

// ErrorCode is the flat result taxonomy. Zero is success, every failure is negative.
type ErrorCode int

const (
	ErrorCodeOK ErrorCode = 0

	ErrorCodeNotInitialized                ErrorCode = -10001
	ErrorCodeNotLogin                      ErrorCode = -10002
	ErrorCodeInvalidAppID                  ErrorCode = -10003
	ErrorCodeInvalidEventHandler           ErrorCode = -10004
	ErrorCodeInvalidToken                  ErrorCode = -10005
	ErrorCodeInvalidUserID                 ErrorCode = -10006
	ErrorCodeInitServiceFailed             ErrorCode = -10007
	ErrorCodeInvalidChannelName            ErrorCode = -10008
	ErrorCodeTokenExpired                  ErrorCode = -10009
	ErrorCodeLoginNoServerResources        ErrorCode = -10010
	ErrorCodeLoginTimeout                  ErrorCode = -10011
	ErrorCodeLoginRejected                 ErrorCode = -10012
	ErrorCodeLoginAborted                  ErrorCode = -10013
	ErrorCodeInvalidParameter              ErrorCode = -10014
	ErrorCodeLoginNotAuthorized            ErrorCode = -10015
	ErrorCodeInconsistentAppID             ErrorCode = -10016
	ErrorCodeDuplicateOperation            ErrorCode = -10017
	ErrorCodeInstanceAlreadyReleased       ErrorCode = -10018
	ErrorCodeInvalidChannelType            ErrorCode = -10019
	ErrorCodeInvalidEncryptionParameter    ErrorCode = -10020
	ErrorCodeOperationRateExceedLimitation ErrorCode = -10021
	ErrorCodeServiceNotSupported           ErrorCode = -10022
	ErrorCodeLoginCanceled                 ErrorCode = -10023
	ErrorCodeInvalidPrivateConfig          ErrorCode = -10024
	ErrorCodeNotConnected                  ErrorCode = -10025
	ErrorCodeRenewTokenTimeout             ErrorCode = -10026

	ErrorCodeChannelNotJoined                     ErrorCode = -11001
	ErrorCodeChannelNotSubscribed                 ErrorCode = -11002
	ErrorCodeChannelExceedTopicUserLimitation     ErrorCode = -11003
	ErrorCodeChannelInReuse                       ErrorCode = -11004
	ErrorCodeChannelInstanceExceedLimitation      ErrorCode = -11005
	ErrorCodeChannelInErrorState                  ErrorCode = -11006
	ErrorCodeChannelJoinFailed                    ErrorCode = -11007
	ErrorCodeChannelInvalidTopicName              ErrorCode = -11008
	ErrorCodeChannelInvalidMessage                ErrorCode = -11009
	ErrorCodeChannelMessageLengthExceedLimitation ErrorCode = -11010
	ErrorCodeChannelInvalidUserList               ErrorCode = -11011
	ErrorCodeChannelNotAvailable                  ErrorCode = -11012
	ErrorCodeChannelTopicNotSubscribed            ErrorCode = -11013
	ErrorCodeChannelExceedTopicLimitation         ErrorCode = -11014
	ErrorCodeChannelJoinTopicFailed               ErrorCode = -11015
	ErrorCodeChannelTopicNotJoined                ErrorCode = -11016
	ErrorCodeChannelTopicNotExist                 ErrorCode = -11017
	ErrorCodeChannelInvalidTopicMeta              ErrorCode = -11018
	ErrorCodeChannelSubscribeTimeout              ErrorCode = -11019
	ErrorCodeChannelSubscribeTooFrequent          ErrorCode = -11020
	ErrorCodeChannelSubscribeFailed               ErrorCode = -11021
	ErrorCodeChannelUnsubscribeFailed             ErrorCode = -11022
	ErrorCodeChannelEncryptMessageFailed          ErrorCode = -11023
	ErrorCodeChannelPublishMessageFailed          ErrorCode = -11024
	ErrorCodeChannelPublishMessageTimeout         ErrorCode = -11026
	ErrorCodeChannelNotConnected                  ErrorCode = -11027
	ErrorCodeChannelLeaveFailed                   ErrorCode = -11028
	ErrorCodeChannelCustomTypeLengthOverflow      ErrorCode = -11029
	ErrorCodeChannelInvalidCustomType             ErrorCode = -11030
	ErrorCodeChannelUnsupportedMessageType        ErrorCode = -11031
	ErrorCodeChannelPresenceNotReady              ErrorCode = -11032
	ErrorCodeChannelReceiverOffline               ErrorCode = -11033
	ErrorCodeChannelJoinCanceled                  ErrorCode = -11034

	ErrorCodeStorageOperationFailed              ErrorCode = -12001
	ErrorCodeStorageMetadataItemExceedLimitation ErrorCode = -12002
	ErrorCodeStorageInvalidMetadataItem          ErrorCode = -12003
	ErrorCodeStorageInvalidArgument              ErrorCode = -12004
	ErrorCodeStorageInvalidRevision              ErrorCode = -12005
	ErrorCodeStorageMetadataLengthOverflow       ErrorCode = -12006
	ErrorCodeStorageInvalidLockName              ErrorCode = -12007
	ErrorCodeStorageLockNotAcquired              ErrorCode = -12008
	ErrorCodeStorageInvalidKey                   ErrorCode = -12009
	ErrorCodeStorageInvalidValue                 ErrorCode = -12010
	ErrorCodeStorageKeyLengthOverflow            ErrorCode = -12011
	ErrorCodeStorageValueLengthOverflow          ErrorCode = -12012
	ErrorCodeStorageDuplicateKey                 ErrorCode = -12013
	ErrorCodeStorageOutdatedRevision             ErrorCode = -12014
	ErrorCodeStorageNotSubscribe                 ErrorCode = -12015
	ErrorCodeStorageInvalidMetadataInstance      ErrorCode = -12016
	ErrorCodeStorageSubscribeUserExceedLimit     ErrorCode = -12017
	ErrorCodeStorageOperationTimeout             ErrorCode = -12018
	ErrorCodeStorageNotAvailable                 ErrorCode = -12019

	ErrorCodePresenceNotConnected           ErrorCode = -13001
	ErrorCodePresenceNotWritable            ErrorCode = -13002
	ErrorCodePresenceInvalidArgument        ErrorCode = -13003
	ErrorCodePresenceCachedTooManyStates    ErrorCode = -13004
	ErrorCodePresenceStateCountOverflow     ErrorCode = -13005
	ErrorCodePresenceInvalidStateKey        ErrorCode = -13006
	ErrorCodePresenceInvalidStateValue      ErrorCode = -13007
	ErrorCodePresenceStateKeySizeOverflow   ErrorCode = -13008
	ErrorCodePresenceStateValueSizeOverflow ErrorCode = -13009
	ErrorCodePresenceStateDuplicateKey      ErrorCode = -13010
	ErrorCodePresenceUserNotExist           ErrorCode = -13011
	ErrorCodePresenceOperationTimeout       ErrorCode = -13012
	ErrorCodePresenceOperationFailed        ErrorCode = -13013

	ErrorCodeLockOperationFailed     ErrorCode = -14001
	ErrorCodeLockOperationTimeout    ErrorCode = -14002
	ErrorCodeLockOperationPerforming ErrorCode = -14003
	ErrorCodeLockAlreadyExist        ErrorCode = -14004
	ErrorCodeLockInvalidName         ErrorCode = -14005
	ErrorCodeLockNotAcquired         ErrorCode = -14006
	ErrorCodeLockAcquireFailed       ErrorCode = -14007
	ErrorCodeLockNotExist            ErrorCode = -14008
	ErrorCodeLockNotAvailable        ErrorCode = -14009
)

var errorReasons = map[ErrorCode]string{
	ErrorCodeOK: "success",

	ErrorCodeNotInitialized:                "client not initialized",
	ErrorCodeNotLogin:                      "not logged in",
	ErrorCodeInvalidAppID:                  "invalid app id",
	ErrorCodeInvalidEventHandler:           "invalid event handler",
	ErrorCodeInvalidToken:                  "invalid token",
	ErrorCodeInvalidUserID:                 "invalid user id",
	ErrorCodeInitServiceFailed:             "init service failed",
	ErrorCodeInvalidChannelName:            "invalid channel name",
	ErrorCodeTokenExpired:                  "token expired",
	ErrorCodeLoginNoServerResources:        "no server resources for login",
	ErrorCodeLoginTimeout:                  "login timeout",
	ErrorCodeLoginRejected:                 "login rejected",
	ErrorCodeLoginAborted:                  "login aborted",
	ErrorCodeInvalidParameter:              "invalid parameter",
	ErrorCodeLoginNotAuthorized:            "login not authorized",
	ErrorCodeInconsistentAppID:             "inconsistent app id",
	ErrorCodeDuplicateOperation:            "duplicate operation",
	ErrorCodeInstanceAlreadyReleased:       "instance already released",
	ErrorCodeInvalidChannelType:            "invalid channel type",
	ErrorCodeInvalidEncryptionParameter:    "invalid encryption parameter",
	ErrorCodeOperationRateExceedLimitation: "operation rate exceeds limitation",
	ErrorCodeServiceNotSupported:           "service not supported",
	ErrorCodeLoginCanceled:                 "login canceled",
	ErrorCodeInvalidPrivateConfig:          "invalid private config",
	ErrorCodeNotConnected:                  "not connected",
	ErrorCodeRenewTokenTimeout:             "renew token timeout",

	ErrorCodeChannelNotJoined:                     "channel not joined",
	ErrorCodeChannelNotSubscribed:                 "channel not subscribed",
	ErrorCodeChannelExceedTopicUserLimitation:     "topic user count exceeds limitation",
	ErrorCodeChannelInReuse:                       "channel in reuse",
	ErrorCodeChannelInstanceExceedLimitation:      "channel instance count exceeds limitation",
	ErrorCodeChannelInErrorState:                  "channel in error state",
	ErrorCodeChannelJoinFailed:                    "join channel failed",
	ErrorCodeChannelInvalidTopicName:              "invalid topic name",
	ErrorCodeChannelInvalidMessage:                "invalid message",
	ErrorCodeChannelMessageLengthExceedLimitation: "message length exceeds limitation",
	ErrorCodeChannelInvalidUserList:               "invalid user list",
	ErrorCodeChannelNotAvailable:                  "channel not available",
	ErrorCodeChannelTopicNotSubscribed:            "topic not subscribed",
	ErrorCodeChannelExceedTopicLimitation:         "topic count exceeds limitation",
	ErrorCodeChannelJoinTopicFailed:               "join topic failed",
	ErrorCodeChannelTopicNotJoined:                "topic not joined",
	ErrorCodeChannelTopicNotExist:                 "topic not exist",
	ErrorCodeChannelInvalidTopicMeta:              "invalid topic meta",
	ErrorCodeChannelSubscribeTimeout:              "subscribe timeout",
	ErrorCodeChannelSubscribeTooFrequent:          "subscribe too frequent",
	ErrorCodeChannelSubscribeFailed:               "subscribe failed",
	ErrorCodeChannelUnsubscribeFailed:             "unsubscribe failed",
	ErrorCodeChannelEncryptMessageFailed:          "encrypt message failed",
	ErrorCodeChannelPublishMessageFailed:          "publish message failed",
	ErrorCodeChannelPublishMessageTimeout:         "publish message timeout",
	ErrorCodeChannelNotConnected:                  "channel not connected",
	ErrorCodeChannelLeaveFailed:                   "leave channel failed",
	ErrorCodeChannelCustomTypeLengthOverflow:      "custom type length overflow",
	ErrorCodeChannelInvalidCustomType:             "invalid custom type",
	ErrorCodeChannelUnsupportedMessageType:        "unsupported message type",
	ErrorCodeChannelPresenceNotReady:              "presence not ready",
	ErrorCodeChannelReceiverOffline:               "receiver offline",
	ErrorCodeChannelJoinCanceled:                  "join channel canceled",

	ErrorCodeStorageOperationFailed:              "storage operation failed",
	ErrorCodeStorageMetadataItemExceedLimitation: "metadata item count exceeds limitation",
	ErrorCodeStorageInvalidMetadataItem:          "invalid metadata item",
	ErrorCodeStorageInvalidArgument:              "invalid storage argument",
	ErrorCodeStorageInvalidRevision:              "invalid revision",
	ErrorCodeStorageMetadataLengthOverflow:       "metadata length overflow",
	ErrorCodeStorageInvalidLockName:              "invalid lock name",
	ErrorCodeStorageLockNotAcquired:              "lock not acquired",
	ErrorCodeStorageInvalidKey:                   "invalid metadata key",
	ErrorCodeStorageInvalidValue:                 "invalid metadata value",
	ErrorCodeStorageKeyLengthOverflow:            "metadata key length overflow",
	ErrorCodeStorageValueLengthOverflow:          "metadata value length overflow",
	ErrorCodeStorageDuplicateKey:                 "duplicate metadata key",
	ErrorCodeStorageOutdatedRevision:             "outdated revision",
	ErrorCodeStorageNotSubscribe:                 "metadata not subscribed",
	ErrorCodeStorageInvalidMetadataInstance:      "invalid metadata instance",
	ErrorCodeStorageSubscribeUserExceedLimit:     "subscribed user count exceeds limitation",
	ErrorCodeStorageOperationTimeout:             "storage operation timeout",
	ErrorCodeStorageNotAvailable:                 "storage not available",

	ErrorCodePresenceNotConnected:           "presence not connected",
	ErrorCodePresenceNotWritable:            "presence not writable",
	ErrorCodePresenceInvalidArgument:        "invalid presence argument",
	ErrorCodePresenceCachedTooManyStates:    "too many cached states",
	ErrorCodePresenceStateCountOverflow:     "state count overflow",
	ErrorCodePresenceInvalidStateKey:        "invalid state key",
	ErrorCodePresenceInvalidStateValue:      "invalid state value",
	ErrorCodePresenceStateKeySizeOverflow:   "state key size overflow",
	ErrorCodePresenceStateValueSizeOverflow: "state value size overflow",
	ErrorCodePresenceStateDuplicateKey:      "duplicate state key",
	ErrorCodePresenceUserNotExist:           "user not exist",
	ErrorCodePresenceOperationTimeout:       "presence operation timeout",
	ErrorCodePresenceOperationFailed:        "presence operation failed",

	ErrorCodeLockOperationFailed:     "lock operation failed",
	ErrorCodeLockOperationTimeout:    "lock operation timeout",
	ErrorCodeLockOperationPerforming: "lock operation performing",
	ErrorCodeLockAlreadyExist:        "lock already exist",
	ErrorCodeLockInvalidName:         "invalid lock name",
	ErrorCodeLockNotAcquired:         "lock not acquired",
	ErrorCodeLockAcquireFailed:       "acquire lock failed",
	ErrorCodeLockNotExist:            "lock not exist",
	ErrorCodeLockNotAvailable:        "lock not available",
}

func (c ErrorCode) OK() bool {
	return c == ErrorCodeOK
}

func (c ErrorCode) Reason() string {
	if reason, ok := errorReasons[c]; ok {
		return reason
	}

	return "unknown error " + strconv.Itoa(int(c))
}

func (c ErrorCode) String() string {
	return c.Reason()
}
