package convert

// simulateProgress reports a growing progress on every tick until done is
// closed. The returned function blocks until the simulation has stopped,
// so no report can happen after it returned.
func simulateProgress(clock Clock, policy ProgressPolicy, done <-chan struct{}, report func(float64)) (wait func()) {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := clock.NewTicker(policy.Interval)
		defer ticker.Stop()

		var progress float64
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				progress = min(progress+policy.Step, policy.Cap)
				report(progress)
			}
		}
	}()
	return func() {
		<-stopped
	}
}

// scale maps the progress of a stage into [from, to] of the job.
func scale(from, to float64, report func(float64)) func(float64) {
	return func(p float64) {
		report(from + p*(to-from))
	}
}
