package smc

// Channel opens privileged sessions to the controller.
type Channel interface {
	// Open acquires a new session. Errors are of kind ChannelError.
	Open() (Session, error)
}

// Session submits parameter blocks to the controller. A Session is not safe
// for concurrent use.
type Session interface {
	// Call performs one round trip. A non-nil error means the call never
	// reached the controller, or its answer could not be received.
	Call(in ParamBlock) (ParamBlock, error)
	// Close releases the session.
	Close() error
}
