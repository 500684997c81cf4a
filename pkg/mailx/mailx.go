// Package mailx delivers transactional email for the quiz backend.
package mailx

import (
	"context"
	"errors"
	"fmt"
)

// ErrDelivery wraps every failed send.
var ErrDelivery = errors.New("mailx: delivery failed")

// Message is a single outbound email with HTML and plain text bodies.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Result describes an accepted message.
type Result struct {
	MessageID string `json:"messageId,omitempty"`
	Driver    string `json:"driver"`
}

// Sender delivers messages. Implementations return a *DeliveryError
// (matching ErrDelivery) when the message was not accepted.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// DeliveryError carries the transport diagnostics of a failed send.
type DeliveryError struct {
	Driver    string
	Reason    string
	Temporary bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mailx: %s delivery failed (%s): %v", e.Driver, e.Reason, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDelivery, e.Err} }

// Diagnostics is the caller facing summary of a best effort send.
type Diagnostics struct {
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Driver    string `json:"driver,omitempty"`
	Error     string `json:"error,omitempty"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Diagnose folds the outcome of Send into Diagnostics.
func Diagnose(res Result, err error) Diagnostics {
	if err == nil {
		return Diagnostics{Sent: true, MessageID: res.MessageID, Driver: res.Driver}
	}

	d := Diagnostics{Driver: res.Driver, Error: err.Error()}
	var de *DeliveryError
	if errors.As(err, &de) {
		d.Driver = de.Driver
		d.Error = de.Reason
		d.Temporary = de.Temporary
	}
	return d
}
