package service

// Service defines the lifecycle interface for infrastructure subsystems
// Services manage long-lived resources: the audio device, the transport clock
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - late configuration (e.g. from parsed flags)
//  3. Start() - open devices, launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init and Start before this one
	Dependencies() []string

	// Init configures the service from optional args
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent
	Stop() error
}
