package server

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec serves plain Go structs over the connect protocol. connect's
// built-in JSON codec only accepts proto messages.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string {
	return c.name
}

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// Codecs returns the handler options that register JSON for both content
// types browsers send.
func Codecs() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: "json"}),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
	}
}

// ClientCodec is the codec connect clients of this service use.
func ClientCodec() connect.ClientOption {
	return connect.WithCodec(jsonCodec{name: "json"})
}
