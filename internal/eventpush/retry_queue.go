package eventpush

import "time"

type retryQueue struct {
	out  func(pushJob) bool
	done <-chan struct{}
}

func newRetryQueue(out func(pushJob) bool, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

func (q *retryQueue) Enqueue(job pushJob, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case <-q.done:
			return
		default:
		}
		if !q.out(job) {
			metricPushRetryDroppedTotal.Add(1)
		}
	})
}
