package core

import "errors"

// Sentinel errors for programmer mistakes at the core boundary
var (
	ErrInvalidVoice = errors.New("invalid voice")
	ErrInvalidStep  = errors.New("invalid step")
)
