package sdlhost

import (
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/veandco/go-sdl2/sdl"
)

// Translate maps an SDL event to a lifecycle event. Events with no
// lifecycle meaning report false.
//
//	SDL_APP_WILLENTERBACKGROUND  stop, Suspending
//	SDL_APP_DIDENTERFOREGROUND   start, ResumeInMemory
//	SDL_APP_TERMINATING          stop, ApplicationExiting
//	SDL_QUIT                     stop, CloseRequested
//	SDL_WINDOWEVENT_CLOSE        stop, WindowClosed
func Translate(ev sdl.Event) (lifecycle.Event, bool) {
	if we, ok := ev.(*sdl.WindowEvent); ok {
		if we.Event == sdl.WINDOWEVENT_CLOSE {
			return lifecycle.NewStopEvent(lifecycle.WindowClosed, ev, nil), true
		}
		return nil, false
	}
	if _, ok := ev.(*sdl.QuitEvent); ok {
		return lifecycle.NewStopEvent(lifecycle.CloseRequested, ev, nil), true
	}

	switch ev.GetType() {
	case sdl.APP_WILLENTERBACKGROUND:
		return lifecycle.NewStopEvent(lifecycle.Suspending, ev, nil), true
	case sdl.APP_DIDENTERFOREGROUND:
		return lifecycle.NewStartEvent(lifecycle.ResumeInMemory, lifecycle.LaunchArgs{
			PreviousState: lifecycle.Suspended,
		}), true
	case sdl.APP_TERMINATING:
		return lifecycle.NewStopEvent(lifecycle.ApplicationExiting, ev, nil), true
	}
	return nil, false
}

// terminal reports whether the loop should exit after ev has been handled.
func terminal(ev lifecycle.Event) bool {
	stop, ok := ev.(*lifecycle.StopEvent)
	return ok && stop.Kind != lifecycle.Suspending
}
