package export

import (
	"fmt"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/thread"
)

type EventKind int

const (
	EventProgress EventKind = iota
	EventSuccess
	EventFailure
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a message from the export worker.
// Progress is set for EventProgress and Err for EventFailure.
type Event struct {
	Kind     EventKind
	Progress Progress
	Err      error
}

// Job is a running export.
type Job struct {
	ID     string
	events *thread.Mailbox[Event]
}

// Start runs the export on a dedicated worker thread.
// The progress of the export goes into the events of the job
// and hooks.OnProgress is not called.
func Start[T any](p *Pipeline, comp *composition.Composition, draw Drawer[T], opts Options, hooks Hooks[T]) *Job {
	job := &Job{ID: newID(), events: thread.NewMailbox[Event]()}
	hooks.OnProgress = func(pr Progress) { job.events.Post(Event{Kind: EventProgress, Progress: pr}) }

	thread.Go(func() {
		defer job.events.Close()
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("export: %v", r)
				}
			}()
			err = run(p, job.ID, comp, draw, opts, hooks)
		}()
		if err != nil {
			job.events.Post(Event{Kind: EventFailure, Err: err})
			return
		}
		job.events.Post(Event{Kind: EventSuccess})
	})
	return job
}

// Events returns the events of the job in order: progress events and then
// one success or failure event. The channel is closed after the last one.
func (j *Job) Events() <-chan Event { return j.events.Out() }

// Wait reads all the events on the calling goroutine, calls onProgress
// for each progress and returns the result of the export.
func (j *Job) Wait(onProgress func(Progress)) (err error) {
	for ev := range j.Events() {
		switch ev.Kind {
		case EventProgress:
			if onProgress != nil {
				onProgress(ev.Progress)
			}
		case EventFailure:
			err = ev.Err
		case EventSuccess:
			err = nil
		}
	}
	return err
}

// Export runs the export off the calling goroutine and waits for it,
// hooks.OnProgress is called on the calling goroutine.
func Export[T any](p *Pipeline, comp *composition.Composition, draw Drawer[T], opts Options, hooks Hooks[T]) error {
	return Start(p, comp, draw, opts, hooks).Wait(hooks.OnProgress)
}
