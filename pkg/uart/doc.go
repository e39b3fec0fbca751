// Package uart drives a PL011-style serial peripheral.
package uart

// The receive path is interrupt driven: the handler drains the
// hardware FIFO into a bounded Queue the foreground polls, and a full
// queue drops bytes silently. The transmit path is polled, spinning
// while the hardware FIFO is full. No errors cross this API; input
// overruns lose data quietly and transmission always completes.
//
// Register access goes through the Registers interface so the same
// driver runs against the simulated board or real silicon.
//
// Producer: receive interrupt handler
// Consumer: foreground console loop
