// Package flux implements the unidirectional state plumbing used by the
// console views: a single-goroutine event Loop, an Emitter for change
// notifications and a Dispatcher that fans actions out to stores.
//
// Everything that touches store or view state runs on the Loop goroutine.
// Other goroutines (HTTP calls, timers) hand results back with Loop.Post,
// which gives the same ordering as a browser task queue:
//
//	loop := flux.NewLoop()
//	go loop.Run(ctx)
//
//	d := flux.NewDispatcher()
//	d.Register(func(a action.Action) { ... })
//
//	_ = loop.Post(func() {
//		_ = d.Dispatch(action.SyncVpcs{Vpcs: vpcs})
//	})
//
// Change events are emitted with Emitter.EmitDefer, so a listener never runs
// inside the Dispatch call that produced the change.
package flux
