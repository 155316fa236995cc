package gpucore

// NewCooperativeDevice wraps adapter in a Context intended for a single
// cooperative caller at a time, such as the js/wasm foreign-surface binding
// where the underlying GPU handle is a syscall/js value that cannot safely
// cross goroutines. Overlapping Use calls fail with cverr.Internal rather
// than blocking.
func NewCooperativeDevice(adapter GPUAdapter) Context {
	return &cooperativeContext{
		adapter: adapter,
		cache:   NewPipelineCache(),
	}
}
