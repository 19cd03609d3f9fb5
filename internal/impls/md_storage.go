package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

type metadataWrite int

const (
	metadataWriteSet metadataWrite = iota
	metadataWriteUpdate
	metadataWriteRemove
)

var metadataEventTypes = map[metadataWrite]defs.StorageEventType{
	metadataWriteSet:    defs.StorageEventTypeSet,
	metadataWriteUpdate: defs.StorageEventTypeUpdate,
	metadataWriteRemove: defs.StorageEventTypeRemove,
}

// metadataScope names the container a metadata request works on and where its events go.
type metadataScope struct {
	storageType defs.StorageType
	channel     defs.ChannelInfo
	userID      string
}

func (s metadataScope) storeTarget() defs.Target {
	if s.storageType == defs.StorageTypeUser {
		return defs.UserTarget(s.userID)
	}

	return defs.ChannelTarget(s.channel.ChannelName, s.channel.ChannelType)
}

func (s metadataScope) eventTarget() defs.Target {
	if s.storageType == defs.StorageTypeUser {
		return userMetadataTarget(s.userID)
	}

	return defs.ChannelTarget(s.channel.ChannelName, s.channel.ChannelType)
}

func (s metadataScope) name() string {
	if s.storageType == defs.StorageTypeUser {
		return s.userID
	}

	return s.channel.ChannelName
}

// userMetadataTarget addresses the sessions watching a user's metadata, not the user itself.
func userMetadataTarget(userID string) defs.Target {
	return defs.ChannelTarget(userID, defs.ChannelTypeUser)
}

func metadataWriteOf(op defs.Op) metadataWrite {
	switch op {
	case defs.OpUpdateChannelMetadata, defs.OpUpdateUserMetadata:
		return metadataWriteUpdate
	case defs.OpRemoveChannelMetadata, defs.OpRemoveUserMetadata:
		return metadataWriteRemove
	}

	return metadataWriteSet
}

func (impl *mdImpl) scopeOf(sd *sessionData, request *defs.Request) (scope metadataScope, code defs.ErrorCode) {
	switch request.Op {
	case defs.OpSetUserMetadata, defs.OpUpdateUserMetadata, defs.OpRemoveUserMetadata, defs.OpGetUserMetadata:
		scope.storageType = defs.StorageTypeUser
		scope.userID = request.UserID

		if scope.userID == "" {
			scope.userID = sd.userID
		}

		return
	}

	scope.storageType = defs.StorageTypeChannel
	scope.channel, code = channelInfoOf(request)

	return
}

func checkMetadataItems(items []defs.MetadataItem) defs.ErrorCode {
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		switch {
		case item.Key == "":
			return defs.ErrorCodeStorageInvalidKey
		case len(item.Key) > maxMetadataKeyLength:
			return defs.ErrorCodeStorageKeyLengthOverflow
		case len(item.Value) > maxMetadataValueLength:
			return defs.ErrorCodeStorageValueLengthOverflow
		case seen[item.Key]:
			return defs.ErrorCodeStorageDuplicateKey
		}

		seen[item.Key] = true
	}

	return defs.ErrorCodeOK
}

func (impl *mdImpl) checkMetadataLock(sd *sessionData, scope metadataScope, lockName string) defs.ErrorCode {
	if lockName == "" || scope.storageType != defs.StorageTypeChannel {
		return defs.ErrorCodeOK
	}

	ch, ok := impl.channels[scope.channel]
	if !ok {
		return defs.ErrorCodeStorageInvalidLockName
	}

	lock, ok := ch.locks[lockName]
	if !ok {
		return defs.ErrorCodeStorageInvalidLockName
	}

	if lock.detail.Owner != sd.userID {
		return defs.ErrorCodeStorageLockNotAcquired
	}

	return defs.ErrorCodeOK
}

// checkRevisions compares the request's revisions with the stored container. Negative revisions are not checked,
// an item missing from the container is at revision 0.
func checkRevisions(current, request *defs.Metadata) defs.ErrorCode {
	if request.MajorRevision >= 0 && request.MajorRevision != current.MajorRevision {
		return defs.ErrorCodeStorageOutdatedRevision
	}

	for _, item := range request.Items {
		if item.Revision < 0 {
			continue
		}

		var revision int64
		if stored, ok := current.Item(item.Key); ok {
			revision = stored.Revision
		}

		if item.Revision != revision {
			return defs.ErrorCodeStorageOutdatedRevision
		}
	}

	return defs.ErrorCodeOK
}

// applyMetadataWrite builds the next container. Each write bumps the major revision by one and the
// written items take the new major revision.
func applyMetadataWrite(current, request *defs.Metadata, write metadataWrite, stamp func(*defs.MetadataItem)) *defs.Metadata {
	next := current.Clone()

	major := current.MajorRevision
	if major < 0 {
		major = 0
	}

	next.MajorRevision = major + 1

	switch write {
	case metadataWriteSet:
		next.Items = nil

		fallthrough
	case metadataWriteUpdate:
		for _, item := range request.Items {
			item.Revision = next.MajorRevision
			stamp(&item)

			next.SetMetadataItem(item)
		}
	case metadataWriteRemove:
		if len(request.Items) == 0 {
			next.Items = nil

			break
		}

		removing := make(map[string]bool, len(request.Items))
		for _, item := range request.Items {
			removing[item.Key] = true
		}

		items := next.Items[:0]

		for _, item := range next.Items {
			if !removing[item.Key] {
				items = append(items, item)
			}
		}

		next.Items = items
	}

	return next
}

func (impl *mdImpl) handleWriteMetadata(ctx context.Context, sd *sessionData, request *defs.Request) {
	scope, code := impl.scopeOf(sd, request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	write := metadataWriteOf(request.Op)

	metadata := request.Metadata
	if metadata == nil {
		if write != metadataWriteRemove {
			impl.reply(sd, request, defs.ErrorCodeStorageInvalidMetadataInstance)

			return
		}

		metadata = defs.NewMetadata()
	}

	if code = checkMetadataItems(metadata.Items); !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	if code = impl.checkMetadataLock(sd, scope, request.LockName); !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	current, err := impl.m.GetMetadata(ctx, scope.storeTarget())
	if err != nil {
		impl.logger.WithFields(l.StringField("target", scope.storeTarget().Key()), l.ErrorField(err)).Error("GetMetadataFailed")

		impl.reply(sd, request, defs.ErrorCodeStorageOperationFailed)

		return
	}

	if code = checkRevisions(current, metadata); !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	var options defs.MetadataOptions
	if request.MetadataOptions != nil {
		options = *request.MetadataOptions
	}

	ts := int64(impl.now())

	next := applyMetadataWrite(current, metadata, write, func(item *defs.MetadataItem) {
		item.UpdateTs = 0
		item.AuthorUserID = ""

		if options.RecordTs {
			item.UpdateTs = ts
		}

		if options.RecordUserID {
			item.AuthorUserID = sd.userID
		}
	})

	if err = impl.m.PutMetadata(ctx, scope.storeTarget(), next); err != nil {
		impl.logger.WithFields(l.StringField("target", scope.storeTarget().Key()), l.ErrorField(err)).Error("PutMetadataFailed")

		impl.reply(sd, request, defs.ErrorCodeStorageOperationFailed)

		return
	}

	impl.publishEvent(scope.eventTarget(), 0, &defs.Event{
		Storage: &defs.StorageEvent{
			ChannelType: scope.channel.ChannelType,
			StorageType: scope.storageType,
			EventType:   metadataEventTypes[write],
			Target:      scope.name(),
			Data:        next.Clone(),
			Timestamp:   impl.now(),
		},
	})

	result := defs.NewResult(request, defs.ErrorCodeOK)
	if scope.storageType == defs.StorageTypeUser {
		result.UserID = scope.userID
	}

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleGetMetadata(ctx context.Context, sd *sessionData, request *defs.Request) {
	scope, code := impl.scopeOf(sd, request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	metadata, err := impl.m.GetMetadata(ctx, scope.storeTarget())
	if err != nil {
		impl.logger.WithFields(l.StringField("target", scope.storeTarget().Key()), l.ErrorField(err)).Error("GetMetadataFailed")

		impl.reply(sd, request, defs.ErrorCodeStorageOperationFailed)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.Metadata = metadata.Clone()

	if scope.storageType == defs.StorageTypeUser {
		result.UserID = scope.userID
	}

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleSubscribeUserMetadata(ctx context.Context, sd *sessionData, request *defs.Request) {
	if request.UserID == "" {
		impl.reply(sd, request, defs.ErrorCodeInvalidUserID)

		return
	}

	if !sd.userMetaSubs[request.UserID] {
		sd.userMetaSubs[request.UserID] = true

		subscribers, ok := impl.userMetaSubs[request.UserID]
		if !ok {
			subscribers = make(map[uint64]*sessionData)
			impl.userMetaSubs[request.UserID] = subscribers

			impl.track(userMetadataTarget(request.UserID))
		}

		subscribers[sd.uniqueID] = sd
	}

	impl.reply(sd, request, defs.ErrorCodeOK)

	metadata, err := impl.m.GetMetadata(ctx, defs.UserTarget(request.UserID))
	if err != nil {
		impl.logger.WithFields(l.StringField("userID", request.UserID), l.ErrorField(err)).Error("GetMetadataFailed")

		return
	}

	impl.sendEvent(sd, &defs.Event{
		Storage: &defs.StorageEvent{
			StorageType: defs.StorageTypeUser,
			EventType:   defs.StorageEventTypeSnapshot,
			Target:      request.UserID,
			Data:        metadata.Clone(),
			Timestamp:   impl.now(),
		},
	})
}

func (impl *mdImpl) handleUnsubscribeUserMetadata(_ context.Context, sd *sessionData, request *defs.Request) {
	if !sd.userMetaSubs[request.UserID] {
		impl.reply(sd, request, defs.ErrorCodeStorageNotSubscribe)

		return
	}

	impl.removeUserMetadataSubscriber(sd, request.UserID)
	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) removeUserMetadataSubscriber(sd *sessionData, userID string) {
	delete(sd.userMetaSubs, userID)

	subscribers := impl.userMetaSubs[userID]
	delete(subscribers, sd.uniqueID)

	if len(subscribers) == 0 {
		delete(impl.userMetaSubs, userID)

		impl.untrack(userMetadataTarget(userID))
	}
}
