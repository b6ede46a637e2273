// Package domain contains the core concept of the relay: the Message
// carried from the HTTP front to the socket listener and into storage.
package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Message is the unit transferred end-to-end. The wire payload carries
// only the username and the text: Date is stamped by the socket listener
// at receipt time, never by the sender.
type Message struct {
	Username string    `json:"username" bson:"username" validate:"required"`
	Message  string    `json:"message" bson:"message" validate:"required"`
	Date     time.Time `json:"-" bson:"date"`
}

// Validate checks that both required fields are present and non-empty.
// Only the HTTP front calls this: the listener stays defensive and
// persists whatever it managed to parse.
func (m Message) Validate() error {
	return validate.Struct(m)
}
