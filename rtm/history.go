package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

type History struct {
	c *Client
}

// GetMessages pages backwards through stored messages, newest first. Feed the returned newStart back as
// options.Start for the next page; 0 means there is nothing older. Messages sharing a timestamp always
// land on the same page, so a page may be shorter than options.MessageCount, or longer when one
// timestamp alone holds more.
func (h *History) GetMessages(channelName string, channelType ChannelType, options *GetHistoryMessagesOptions) (uint64, error) {
	return h.c.submit(clientOwner, &defs.Request{
		Op:             defs.OpGetHistoryMessages,
		ChannelName:    channelName,
		ChannelType:    channelType,
		HistoryOptions: options,
	})
}
