// Package task runs deferred background work.
//
// A Scheduler arms one timer per job and hands fired jobs to a bounded
// TaskQueue, which a WorkerPool drains. CompletionTask is the job that moves
// a pending image submission to completed (or failed) once its delay has
// elapsed, so HTTP handlers never wait for a result to be produced.
package task
