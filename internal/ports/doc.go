// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the synchronization core and the outside
// world. They define what the core needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [MessageSource]: Delivers raw camera messages from the transport
//   - [MessageSink]: Accepts raw camera messages (implemented by the correlator)
//   - [PairPublisher]: Republishes synchronized stereo pairs
//   - [InfoPublisher]: Publishes latched diagnostic text
//   - [DriverController]: Stops and starts the upstream camera driver
//   - [StatusRepository]: Persists restart history
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with ZeroMQ,
// WebSocket, shell and file system backends.
package ports
