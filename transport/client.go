// Package transport implements the client side of the internal delivery
// protocol: one TCP connection per message, a single UTF-8 JSON write, then
// close. There is no length prefix, no acknowledgment and no retry; the
// connection boundary is the only framing.
package transport

import (
	"encoding/json"
	"fmt"
	"net"

	"webrelay/domain"
)

// Send delivers one message to the socket listener at addr. A failed
// delivery is reported to the caller, who decides whether to surface it;
// the message itself is gone either way (best-effort, at-most-once).
func Send(addr string, message domain.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to socket listener at %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err = conn.Write(payload); err != nil {
		return fmt.Errorf("sending message to %s: %w", addr, err)
	}
	return nil
}
