package domain

import "encoding/json"

// DefaultNotificationLevel is used when a notification carries no level.
const DefaultNotificationLevel = "info"

// NotificationFromMessage builds a Notification from a JSON-RPC notification.
// Level and data are taken from params when params is an object.
func NotificationFromMessage(msg *IncomingMessage) Notification {
	n := Notification{
		Method: msg.Method,
		Level:  DefaultNotificationLevel,
		Params: msg.Params,
	}

	var params struct {
		Level string          `json:"level"`
		Data  json.RawMessage `json:"data"`
	}
	if len(msg.Params) > 0 && json.Unmarshal(msg.Params, &params) == nil {
		if params.Level != "" {
			n.Level = params.Level
		}
		n.Data = params.Data
	}

	return n
}
