// Package domain contains the core domain entities and value objects for stereosync.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (sockets, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Image] and [CameraInfo]: raw camera messages with a [Header]
//   - [FrameSet]: one correlated left/right tuple as delivered by the correlator
//   - [SyncedPair]: a re-stamped FrameSet ready to be republished
//   - [RestartEvent] and [Status]: records of driver restarts for operators
//
// # Design Principles
//
// Domain entities are:
//   - Copied by value when re-stamped, so inputs are never mutated
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
