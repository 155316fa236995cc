package gpucore

// NewThreadedDevice wraps an already-acquired GPUAdapter in a Context safe
// for concurrent use from any goroutine. This is the variant used by the
// default CPU/GPU-host build: dispatch.Do may be called from many
// goroutines and every call serializes on the adapter's mutex for the
// duration of its GPU work, the same way the teacher's device acquisition
// code assumed a single process-wide device shared across a worker pool.
func NewThreadedDevice(adapter GPUAdapter) Context {
	return &threadedContext{
		adapter: adapter,
		cache:   NewPipelineCache(),
	}
}
