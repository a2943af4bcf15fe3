package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const correlationIDLength = 16

// NewCorrelationID returns a random id used to tie queue messages and their
// staged data together across worker restarts.
func NewCorrelationID() string {
	id, err := gonanoid.New(correlationIDLength)
	if err != nil {
		// gonanoid only fails when the system entropy source is broken.
		panic(err)
	}
	return id
}
