// Package wire connects console devices to remote terminals.
package wire

// A console device talks raw bytes over its serial line. This package
// moves those bytes across real transports. A hosting daemon announces
// its console through a registrar and pumps the serial line into the
// transport; clients discover hosted consoles through a Connector and
// attach interactive sessions.
//
// Sub-packages provide the transports: mqtt (brokered streams with
// discovery), websocket, serial (physical ports) and tty (the local
// process terminal).
//
// Producer: console hosting daemons
// Consumer: attach/monitor clients
