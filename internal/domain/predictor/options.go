package predictor

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithSerializedInference runs at most one model call at a time. Use it for
// runtimes that are not safe for concurrent invocation.
func WithSerializedInference(enabled bool) Option {
	return func(a *Adapter) {
		a.serialize = enabled
	}
}
