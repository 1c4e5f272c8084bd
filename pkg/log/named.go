package log

// Named returns a logger that adds a component field to every message of l.
func Named(l Logger, component string) Logger {
	if z, ok := l.(*ZerologAdapter); ok {
		return z.With(String("component", component))
	}
	return &named{inner: l, component: String("component", component)}
}

type named struct {
	inner     Logger
	component Field
}

func (n *named) Debug(msg string, fields ...Field) { n.inner.Debug(msg, n.with(fields)...) }
func (n *named) Info(msg string, fields ...Field)  { n.inner.Info(msg, n.with(fields)...) }
func (n *named) Warn(msg string, fields ...Field)  { n.inner.Warn(msg, n.with(fields)...) }
func (n *named) Error(msg string, fields ...Field) { n.inner.Error(msg, n.with(fields)...) }

func (n *named) with(fields []Field) []Field {
	return append([]Field{n.component}, fields...)
}
