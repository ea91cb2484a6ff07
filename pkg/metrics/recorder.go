// Package metrics records poller, workspace API and text-generation activity.
package metrics

import "time"

// Tick outcomes.
const (
	TickIdle     = "idle"     // no queued task
	TickBusy     = "busy"     // previous tick still running
	TickExecuted = "executed" // a task ran to completion
	TickError    = "error"    // task query or listing failed
)

// Recorder receives observations from the poller, the Notion client and text generators.
type Recorder interface {
	// ObserveNotionRequest records one HTTP round trip to the workspace API.
	ObserveNotionRequest(method, endpoint string, statusCode int, duration time.Duration)
	// ObserveQueueWait records how long a call waited in the request limiter.
	ObserveQueueWait(duration time.Duration)
	// ObserveTick records one poll tick outcome.
	ObserveTick(outcome string)
	// ObserveTask records the final status of one task execution.
	ObserveTask(status string)
	// ObserveCommand records one executed to-do command.
	ObserveCommand(success bool, duration time.Duration)
	// ObserveTextGen records one completion request.
	ObserveTextGen(provider, model string, promptTokens, completionTokens int, success bool, duration time.Duration)
}

// Nop discards every observation.
type Nop struct{}

// ObserveNotionRequest implements Recorder.
func (Nop) ObserveNotionRequest(string, string, int, time.Duration) {}

// ObserveQueueWait implements Recorder.
func (Nop) ObserveQueueWait(time.Duration) {}

// ObserveTick implements Recorder.
func (Nop) ObserveTick(string) {}

// ObserveTask implements Recorder.
func (Nop) ObserveTask(string) {}

// ObserveCommand implements Recorder.
func (Nop) ObserveCommand(bool, time.Duration) {}

// ObserveTextGen implements Recorder.
func (Nop) ObserveTextGen(string, string, int, int, bool, time.Duration) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
