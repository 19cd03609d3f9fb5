package impls

import (
	"context"
	"sort"

	"github.com/sbasestarter/rtm-harness/internal/defs"
)

func (impl *mdImpl) handleWhoNow(_ context.Context, sd *sessionData, request *defs.Request) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	options := defs.PresenceOptions{IncludeUserID: true}
	if request.PresenceOptions != nil {
		options = *request.PresenceOptions
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)

	ch, ok := impl.channels[info]
	if !ok {
		impl.replyResult(sd, result)

		return
	}

	states := ch.userStates(options.IncludeState)
	result.Count = len(states)

	// pages are cursors over the ascending user ids; the token is the last id of the previous page
	start := 0
	if options.Page != "" {
		start = sort.Search(len(states), func(i int) bool {
			return states[i].UserID > options.Page
		})
	}

	end := start + presencePageSize
	if end < len(states) {
		result.NextPage = states[end-1].UserID
	} else {
		end = len(states)
	}

	if options.IncludeUserID || options.IncludeState {
		result.UserStates = states[start:end]

		if !options.IncludeUserID {
			for idx := range result.UserStates {
				result.UserStates[idx].UserID = ""
			}
		}
	}

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleWhereNow(_ context.Context, sd *sessionData, request *defs.Request) {
	userID := request.UserID
	if userID == "" {
		impl.reply(sd, request, defs.ErrorCodeInvalidUserID)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)

	for info, ch := range impl.channels {
		if ch.hasUser(userID) {
			result.Channels = append(result.Channels, info)
		}
	}

	sort.Slice(result.Channels, func(i, j int) bool {
		if result.Channels[i].ChannelType != result.Channels[j].ChannelType {
			return result.Channels[i].ChannelType < result.Channels[j].ChannelType
		}

		return result.Channels[i].ChannelName < result.Channels[j].ChannelName
	})

	result.Count = len(result.Channels)

	impl.replyResult(sd, result)
}

// memberChannel resolves the channel a state request writes to. Only members may write their state.
func (impl *mdImpl) memberChannel(sd *sessionData, request *defs.Request) (*channelData, bool) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return nil, false
	}

	ch, ok := impl.channels[info]
	if ok {
		_, ok = ch.members[sd.uniqueID]
	}

	if !ok {
		code = defs.ErrorCodeChannelNotSubscribed
		if info.ChannelType == defs.ChannelTypeStream {
			code = defs.ErrorCodeChannelNotJoined
		}

		impl.reply(sd, request, code)

		return nil, false
	}

	return ch, true
}

func (impl *mdImpl) stateChanged(sd *sessionData, ch *channelData) {
	impl.publishEvent(defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType), sd.uniqueID, &defs.Event{
		Presence: &defs.PresenceEvent{
			Type:        defs.PresenceEventTypeRemoteStateChanged,
			ChannelType: ch.info.ChannelType,
			ChannelName: ch.info.ChannelName,
			Publisher:   sd.userID,
			StateItems:  append([]defs.StateItem(nil), ch.states[sd.userID]...),
			Timestamp:   impl.now(),
		},
	})
}

func (impl *mdImpl) handleSetState(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, ok := impl.memberChannel(sd, request)
	if !ok {
		return
	}

	seen := make(map[string]bool, len(request.States))

	for _, item := range request.States {
		if item.Key == "" {
			impl.reply(sd, request, defs.ErrorCodePresenceInvalidStateKey)

			return
		}

		if seen[item.Key] {
			impl.reply(sd, request, defs.ErrorCodePresenceStateDuplicateKey)

			return
		}

		seen[item.Key] = true
	}

	states := append([]defs.StateItem(nil), ch.states[sd.userID]...)

	for _, item := range request.States {
		replaced := false

		for idx := range states {
			if states[idx].Key == item.Key {
				states[idx].Value = item.Value
				replaced = true

				break
			}
		}

		if !replaced {
			states = append(states, item)
		}
	}

	if len(states) > maxStateItems {
		impl.reply(sd, request, defs.ErrorCodePresenceStateCountOverflow)

		return
	}

	ch.states[sd.userID] = states

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.stateChanged(sd, ch)
}

func (impl *mdImpl) handleRemoveState(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, ok := impl.memberChannel(sd, request)
	if !ok {
		return
	}

	if len(request.Keys) == 0 {
		delete(ch.states, sd.userID)
	} else {
		removing := make(map[string]bool, len(request.Keys))
		for _, key := range request.Keys {
			removing[key] = true
		}

		var states []defs.StateItem

		for _, item := range ch.states[sd.userID] {
			if !removing[item.Key] {
				states = append(states, item)
			}
		}

		ch.states[sd.userID] = states
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.stateChanged(sd, ch)
}

func (impl *mdImpl) handleGetState(_ context.Context, sd *sessionData, request *defs.Request) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	ch, ok := impl.channels[info]
	if !ok || !ch.hasUser(request.UserID) {
		impl.reply(sd, request, defs.ErrorCodePresenceUserNotExist)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.State = &defs.UserState{
		UserID: request.UserID,
		States: append([]defs.StateItem(nil), ch.states[request.UserID]...),
	}

	impl.replyResult(sd, result)
}
