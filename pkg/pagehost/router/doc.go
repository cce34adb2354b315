// Package router provides stack-based page navigation for one or more
// frames.
//
// Pages are registered by key in a Registry, optionally naming a view-model
// that the Service resolves from a container on every navigation. A
// navigation URI is one or more page segments separated by '/', each with an
// optional query string:
//
//	svc.Navigate("Home/Library?sort=name/Detail?id=42", nil, nil)
//
// The last segment becomes the current page. Earlier segments are pushed
// onto the back stack without building their view-models, so going back
// lands on Library with sort=name.
//
// # Results
//
// Every operation yields exactly one Result. Navigate, GoBack, GoForward
// and Refresh block until the frame has handled the request; the Async
// forms return a channel instead. Failures are described by Result.Kind and
// never returned as an error or raised as a panic.
//
// # Threading
//
// Each frame owns a Dispatcher. Requests run on it one at a time in the
// order they were made, so view-model hooks and OnNavigated observers always
// run there too. Code already on the dispatcher must use the Async forms.
//
// # Resume State
//
// A history entry keeps its parameters as a query string. Going back without
// new parameters replays them, and SaveState/RestoreState persist whole
// frames so an application terminated while suspended can come back where
// it left off.
package router
