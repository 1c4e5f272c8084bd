package log

// NoopLogger discards everything. The zero value is ready to use.
type NoopLogger struct{}

// NewNoopLogger returns a logger that discards all messages.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
