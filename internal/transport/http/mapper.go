package http

import (
	"encoding/json"

	"github.com/vovakirdan/pulse-server/internal/core"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

// inboundToCommand validates an inbound envelope. A malformed stateUpdate body
// is not an error: its intensity defaults to zero.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.TypeStateUpdate:
		var update proto.StateUpdateIn
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &update); err != nil {
				update = proto.StateUpdateIn{}
			}
		}
		return &core.Command{
			Kind:      core.CommandStateUpdate,
			Intensity: proto.ParseIntensity(update.Intensity),
		}, nil
	case "":
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "type is required"}
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventHello:
		return proto.Outbound{
			Type: proto.TypeHello,
			Data: proto.Hello{
				Protocol: proto.ProtocolVersion,
				Self:     proto.RecordFrom(event.Self),
				Peers:    proto.RecordsFrom(event.Peers),
			},
		}
	case core.EventJoined:
		return proto.Outbound{
			Type: proto.TypeJoined,
			Data: proto.RecordFrom(event.Record),
		}
	case core.EventStateUpdate:
		return proto.Outbound{
			Type: proto.TypeStateUpdate,
			Data: proto.StateUpdateOut{
				UserID:    event.UserID,
				Intensity: event.Intensity,
			},
		}
	case core.EventLeft:
		return proto.Outbound{
			Type: proto.TypeLeft,
			Data: proto.Left{UserID: event.UserID},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.TypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.TypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.TypeError, Error: &proto.Error{Code: core.ErrCodeInternal, Msg: "unknown event"}}
	}
}
