package event

const (
	defaultEnabled    = true
	defaultBufferSize = 256
)
