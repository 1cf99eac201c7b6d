// Package tracker
// Author: momentics <momentics@gmail.com>
//
// Reference VSyncTracker: a periodic model base + k*period fitted over a
// bounded window of observed pulse timestamps. The dispatch queue depends
// only on the api.VSyncTracker contract, never on this implementation; any
// conforming predictor can stand in behind it.
package tracker
