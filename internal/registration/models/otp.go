package models

import (
	"fmt"
	"time"
)

const (
	// OTPCountdownSeconds is how long a dispatched code blocks resending.
	OTPCountdownSeconds = 120
	OTPCodeLength       = 6
	AadhaarNumberLength = 12
)

// OTPSession is the ephemeral verification state of the ID number.
type OTPSession struct {
	Sent             bool      `json:"sent"`
	Verified         bool      `json:"verified"`
	EnteredCode      string    `json:"enteredCode,omitempty"`
	CountdownSeconds int       `json:"countdownSeconds"`
	CanResend        bool      `json:"canResend"`
	LastTickAt       time.Time `json:"lastTickAt,omitzero"`
}

// Counting reports whether the countdown should still be running.
func (o OTPSession) Counting() bool {
	return o.Sent && !o.Verified && o.CountdownSeconds > 0
}

// Remaining renders the countdown as m:ss, e.g. "1:05".
func (o OTPSession) Remaining() string {
	return fmt.Sprintf("%d:%02d", o.CountdownSeconds/60, o.CountdownSeconds%60)
}
