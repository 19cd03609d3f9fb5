package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

type ErrorCode = defs.ErrorCode

const (
	ErrorCodeOK = defs.ErrorCodeOK

	ErrorCodeNotInitialized                = defs.ErrorCodeNotInitialized
	ErrorCodeNotLogin                      = defs.ErrorCodeNotLogin
	ErrorCodeInvalidAppID                  = defs.ErrorCodeInvalidAppID
	ErrorCodeInvalidEventHandler           = defs.ErrorCodeInvalidEventHandler
	ErrorCodeInvalidToken                  = defs.ErrorCodeInvalidToken
	ErrorCodeInvalidUserID                 = defs.ErrorCodeInvalidUserID
	ErrorCodeInitServiceFailed             = defs.ErrorCodeInitServiceFailed
	ErrorCodeInvalidChannelName            = defs.ErrorCodeInvalidChannelName
	ErrorCodeTokenExpired                  = defs.ErrorCodeTokenExpired
	ErrorCodeLoginNoServerResources        = defs.ErrorCodeLoginNoServerResources
	ErrorCodeLoginTimeout                  = defs.ErrorCodeLoginTimeout
	ErrorCodeLoginRejected                 = defs.ErrorCodeLoginRejected
	ErrorCodeLoginAborted                  = defs.ErrorCodeLoginAborted
	ErrorCodeInvalidParameter              = defs.ErrorCodeInvalidParameter
	ErrorCodeLoginNotAuthorized            = defs.ErrorCodeLoginNotAuthorized
	ErrorCodeInconsistentAppID             = defs.ErrorCodeInconsistentAppID
	ErrorCodeDuplicateOperation            = defs.ErrorCodeDuplicateOperation
	ErrorCodeInstanceAlreadyReleased       = defs.ErrorCodeInstanceAlreadyReleased
	ErrorCodeInvalidChannelType            = defs.ErrorCodeInvalidChannelType
	ErrorCodeInvalidEncryptionParameter    = defs.ErrorCodeInvalidEncryptionParameter
	ErrorCodeOperationRateExceedLimitation = defs.ErrorCodeOperationRateExceedLimitation
	ErrorCodeServiceNotSupported           = defs.ErrorCodeServiceNotSupported
	ErrorCodeLoginCanceled                 = defs.ErrorCodeLoginCanceled
	ErrorCodeInvalidPrivateConfig          = defs.ErrorCodeInvalidPrivateConfig
	ErrorCodeNotConnected                  = defs.ErrorCodeNotConnected
	ErrorCodeRenewTokenTimeout             = defs.ErrorCodeRenewTokenTimeout

	ErrorCodeChannelNotJoined                     = defs.ErrorCodeChannelNotJoined
	ErrorCodeChannelNotSubscribed                 = defs.ErrorCodeChannelNotSubscribed
	ErrorCodeChannelExceedTopicUserLimitation     = defs.ErrorCodeChannelExceedTopicUserLimitation
	ErrorCodeChannelInReuse                       = defs.ErrorCodeChannelInReuse
	ErrorCodeChannelInstanceExceedLimitation      = defs.ErrorCodeChannelInstanceExceedLimitation
	ErrorCodeChannelInErrorState                  = defs.ErrorCodeChannelInErrorState
	ErrorCodeChannelJoinFailed                    = defs.ErrorCodeChannelJoinFailed
	ErrorCodeChannelInvalidTopicName              = defs.ErrorCodeChannelInvalidTopicName
	ErrorCodeChannelInvalidMessage                = defs.ErrorCodeChannelInvalidMessage
	ErrorCodeChannelMessageLengthExceedLimitation = defs.ErrorCodeChannelMessageLengthExceedLimitation
	ErrorCodeChannelInvalidUserList               = defs.ErrorCodeChannelInvalidUserList
	ErrorCodeChannelNotAvailable                  = defs.ErrorCodeChannelNotAvailable
	ErrorCodeChannelTopicNotSubscribed            = defs.ErrorCodeChannelTopicNotSubscribed
	ErrorCodeChannelExceedTopicLimitation         = defs.ErrorCodeChannelExceedTopicLimitation
	ErrorCodeChannelJoinTopicFailed               = defs.ErrorCodeChannelJoinTopicFailed
	ErrorCodeChannelTopicNotJoined                = defs.ErrorCodeChannelTopicNotJoined
	ErrorCodeChannelTopicNotExist                 = defs.ErrorCodeChannelTopicNotExist
	ErrorCodeChannelInvalidTopicMeta              = defs.ErrorCodeChannelInvalidTopicMeta
	ErrorCodeChannelSubscribeTimeout              = defs.ErrorCodeChannelSubscribeTimeout
	ErrorCodeChannelSubscribeTooFrequent          = defs.ErrorCodeChannelSubscribeTooFrequent
	ErrorCodeChannelSubscribeFailed               = defs.ErrorCodeChannelSubscribeFailed
	ErrorCodeChannelUnsubscribeFailed             = defs.ErrorCodeChannelUnsubscribeFailed
	ErrorCodeChannelEncryptMessageFailed          = defs.ErrorCodeChannelEncryptMessageFailed
	ErrorCodeChannelPublishMessageFailed          = defs.ErrorCodeChannelPublishMessageFailed
	ErrorCodeChannelPublishMessageTimeout         = defs.ErrorCodeChannelPublishMessageTimeout
	ErrorCodeChannelNotConnected                  = defs.ErrorCodeChannelNotConnected
	ErrorCodeChannelLeaveFailed                   = defs.ErrorCodeChannelLeaveFailed
	ErrorCodeChannelCustomTypeLengthOverflow      = defs.ErrorCodeChannelCustomTypeLengthOverflow
	ErrorCodeChannelInvalidCustomType             = defs.ErrorCodeChannelInvalidCustomType
	ErrorCodeChannelUnsupportedMessageType        = defs.ErrorCodeChannelUnsupportedMessageType
	ErrorCodeChannelPresenceNotReady              = defs.ErrorCodeChannelPresenceNotReady
	ErrorCodeChannelReceiverOffline               = defs.ErrorCodeChannelReceiverOffline
	ErrorCodeChannelJoinCanceled                  = defs.ErrorCodeChannelJoinCanceled

	ErrorCodeStorageOperationFailed              = defs.ErrorCodeStorageOperationFailed
	ErrorCodeStorageMetadataItemExceedLimitation = defs.ErrorCodeStorageMetadataItemExceedLimitation
	ErrorCodeStorageInvalidMetadataItem          = defs.ErrorCodeStorageInvalidMetadataItem
	ErrorCodeStorageInvalidArgument              = defs.ErrorCodeStorageInvalidArgument
	ErrorCodeStorageInvalidRevision              = defs.ErrorCodeStorageInvalidRevision
	ErrorCodeStorageMetadataLengthOverflow       = defs.ErrorCodeStorageMetadataLengthOverflow
	ErrorCodeStorageInvalidLockName              = defs.ErrorCodeStorageInvalidLockName
	ErrorCodeStorageLockNotAcquired              = defs.ErrorCodeStorageLockNotAcquired
	ErrorCodeStorageInvalidKey                   = defs.ErrorCodeStorageInvalidKey
	ErrorCodeStorageInvalidValue                 = defs.ErrorCodeStorageInvalidValue
	ErrorCodeStorageKeyLengthOverflow            = defs.ErrorCodeStorageKeyLengthOverflow
	ErrorCodeStorageValueLengthOverflow          = defs.ErrorCodeStorageValueLengthOverflow
	ErrorCodeStorageDuplicateKey                 = defs.ErrorCodeStorageDuplicateKey
	ErrorCodeStorageOutdatedRevision             = defs.ErrorCodeStorageOutdatedRevision
	ErrorCodeStorageNotSubscribe                 = defs.ErrorCodeStorageNotSubscribe
	ErrorCodeStorageInvalidMetadataInstance      = defs.ErrorCodeStorageInvalidMetadataInstance
	ErrorCodeStorageSubscribeUserExceedLimit     = defs.ErrorCodeStorageSubscribeUserExceedLimit
	ErrorCodeStorageOperationTimeout             = defs.ErrorCodeStorageOperationTimeout
	ErrorCodeStorageNotAvailable                 = defs.ErrorCodeStorageNotAvailable

	ErrorCodePresenceNotConnected           = defs.ErrorCodePresenceNotConnected
	ErrorCodePresenceNotWritable            = defs.ErrorCodePresenceNotWritable
	ErrorCodePresenceInvalidArgument        = defs.ErrorCodePresenceInvalidArgument
	ErrorCodePresenceCachedTooManyStates    = defs.ErrorCodePresenceCachedTooManyStates
	ErrorCodePresenceStateCountOverflow     = defs.ErrorCodePresenceStateCountOverflow
	ErrorCodePresenceInvalidStateKey        = defs.ErrorCodePresenceInvalidStateKey
	ErrorCodePresenceInvalidStateValue      = defs.ErrorCodePresenceInvalidStateValue
	ErrorCodePresenceStateKeySizeOverflow   = defs.ErrorCodePresenceStateKeySizeOverflow
	ErrorCodePresenceStateValueSizeOverflow = defs.ErrorCodePresenceStateValueSizeOverflow
	ErrorCodePresenceStateDuplicateKey      = defs.ErrorCodePresenceStateDuplicateKey
	ErrorCodePresenceUserNotExist           = defs.ErrorCodePresenceUserNotExist
	ErrorCodePresenceOperationTimeout       = defs.ErrorCodePresenceOperationTimeout
	ErrorCodePresenceOperationFailed        = defs.ErrorCodePresenceOperationFailed

	ErrorCodeLockOperationFailed     = defs.ErrorCodeLockOperationFailed
	ErrorCodeLockOperationTimeout    = defs.ErrorCodeLockOperationTimeout
	ErrorCodeLockOperationPerforming = defs.ErrorCodeLockOperationPerforming
	ErrorCodeLockAlreadyExist        = defs.ErrorCodeLockAlreadyExist
	ErrorCodeLockInvalidName         = defs.ErrorCodeLockInvalidName
	ErrorCodeLockNotAcquired         = defs.ErrorCodeLockNotAcquired
	ErrorCodeLockAcquireFailed       = defs.ErrorCodeLockAcquireFailed
	ErrorCodeLockNotExist            = defs.ErrorCodeLockNotExist
	ErrorCodeLockNotAvailable        = defs.ErrorCodeLockNotAvailable
)
