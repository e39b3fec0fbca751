// Package irq models the interrupt context of the firmware.
package irq

// The firmware core runs in exactly two contexts: a preemptive
// interrupt handler and a cooperative foreground loop. On silicon the
// interrupt context is provided by the NVIC; here it is provided by a
// Controller owning one dispatch goroutine. Peripherals raise lines,
// the dispatcher runs the bound handlers one at a time.
//
// State shared between a handler and the foreground is guarded by a
// Section, the stand-in for momentarily masking interrupts.
//
// Producer: peripherals (simulated or otherwise)
// Consumer: device drivers
