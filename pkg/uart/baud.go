package uart

// BaudDivisor computes the two parts of the baud rate divisor for a
// peripheral clock: the integer part truncated, the 6-bit fractional
// part rounded half up. baudRate must be non-zero.
func BaudDivisor(clockHz, baudRate uint32) (integer, fraction uint32) {
	d := uint64(16) * uint64(baudRate)
	rem := uint64(clockHz) % d
	integer = uint32(uint64(clockHz) / d)
	fraction = uint32((rem*128 + d) / (2 * d))
	return
}
