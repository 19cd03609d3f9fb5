package rtm

import (
	"github.com/sgostarter/i/l"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SetParameters merges a JSON object of private parameters into the client. Later keys win.
func (c *Client) SetParameters(parameters string) error {
	if c.released.Load() {
		return newError("SetParameters", ErrorCodeInstanceAlreadyReleased, nil)
	}

	var s structpb.Struct

	if err := protojson.Unmarshal([]byte(parameters), &s); err != nil {
		return newError("SetParameters", ErrorCodeInvalidParameter, err)
	}

	c.mu.Lock()
	if c.parameters == nil {
		c.parameters = &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	}

	for key, value := range s.GetFields() {
		c.parameters.Fields[key] = value
	}
	c.mu.Unlock()

	c.logger.WithFields(l.UInt64Field("count", uint64(len(s.GetFields())))).Debug("ParametersSet")

	return nil
}

// Parameter returns a value set through SetParameters, decoded to plain Go values.
func (c *Client) Parameter(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.parameters.GetFields()[key]
	if !ok {
		return nil, false
	}

	return value.AsInterface(), true
}
