// Package lifecycle turns the platform's activation, suspend, resume and
// close callbacks into one ordered startup and shutdown sequence.
//
// Every callback is wrapped in a StartEvent or StopEvent and passed to
// Orchestrator.Handle. The orchestrator decides what a start really is
// (a relaunch of a running instance becomes Activate, a launch after the
// platform killed the suspended process becomes ResumeFromTerminate), builds
// the container exactly once, and only then lets navigation services be
// created.
package lifecycle
