//go:build js

// ABOUTME: Browser entry point compiled with GopherJS
// ABOUTME: Exposes trigger, release and state to the host page and tears down on unload
package main

import (
	"context"
	"log"

	"github.com/gopherjs/gopherjs/js"

	"github.com/frostbloom/frostbloom-go/pkg/compose"
	"github.com/frostbloom/frostbloom-go/pkg/render/webaudio"
	"github.com/frostbloom/frostbloom-go/pkg/session"
)

// stateEvent is dispatched on document with the state name in detail
const stateEvent = "frostbloom:state"

func main() {
	sess, err := session.New(session.Config{
		Recipe:     compose.NewIceScene(),
		NewContext: webaudio.Factory(),
		OnStateChange: func(state session.State) {
			publish(state)
		},
	})
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return
	}

	js.Global.Set("frostbloom", js.M{
		// trigger must be called from a user gesture handler so the browser
		// lets the AudioContext start. The returned promise rejects with
		// the error message when playback is unavailable.
		"trigger": func() *js.Object {
			return js.Global.Get("Promise").New(func(resolve, reject *js.Object) {
				go func() {
					if err := sess.Trigger(context.Background()); err != nil {
						log.Printf("Trigger failed: %v", err)
						reject.Invoke(err.Error())
						return
					}
					resolve.Invoke(sess.State().String())
				}()
			})
		},
		"release": func() {
			sess.ReleaseAsync()
		},
		"state": func() string {
			return sess.State().String()
		},
	})

	// JS callbacks must not block, and a pending trigger holds the session
	js.Global.Call("addEventListener", "beforeunload", func() {
		sess.ReleaseAsync()
	})

	publish(sess.State())
	log.Printf("Frostbloom ready")
}

func publish(state session.State) {
	document := js.Global.Get("document")
	if document == nil || document == js.Undefined {
		return
	}
	event := js.Global.Get("CustomEvent").New(stateEvent, js.M{
		"detail": state.String(),
	})
	document.Call("dispatchEvent", event)
}
