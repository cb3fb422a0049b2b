//go:build !darwin

package smc

import "errors"

var errUnsupportedPlatform = errors.New("SMC is only available on macOS")

// IOKitChannel is unavailable on this platform; Open always fails.
type IOKitChannel struct{}

// NewIOKitChannel returns a channel whose Open fails with ChannelError.
func NewIOKitChannel() Channel {
	return IOKitChannel{}
}

// Open implements Channel.
func (IOKitChannel) Open() (Session, error) {
	return nil, &Error{Kind: ChannelError, Op: "open", Err: errUnsupportedPlatform}
}
