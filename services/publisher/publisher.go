package publisher

// Publisher pushes new-listing events to downstream consumers
type Publisher interface {
	// Publish sends one listing payload keyed by its listing id
	Publish(id string, payload []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
