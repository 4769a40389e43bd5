// Package wire defines the message envelope exchanged over the
// persistent dashboard connection and its JSON encoding.
//
// Every frame is a JSON object with fixed field names:
//
//	{
//	  "type":      "data" | "status" | "command" | "ack",
//	  "device_id": string,
//	  "payload":   <any>,
//	  "id":        string (omitted when absent),
//	  "timestamp": unix seconds
//	}
//
// Decoding is strict on the "type" discriminant but tolerates unknown
// additional fields for forward compatibility.
package wire
