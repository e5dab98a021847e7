// Package task provides asynchronous background task execution: a
// worker-pool runner with an in-memory queue, plus the tasks that run
// on it, currently invitation email delivery.
package task
