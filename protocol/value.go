package protocol

// Field limits.
const (
	// MaxValue is the largest value carried by a split 14-bit field.
	MaxValue = 0x3FFF

	// MaxDataByte is the largest value of a single data byte (device, channel,
	// count, subroutine number).
	MaxDataByte = 0x7F

	// MaxMiniSSCChannel is the largest MiniSSC channel; 0xFF is the frame marker.
	MaxMiniSSCChannel = 0xFE

	// MaxMiniSSCTarget is the largest raw MiniSSC target.
	MaxMiniSSCTarget = 0xFF
)

// Split14 splits a 14-bit value into its low and high 7-bit groups.
//
// Bits above bit 13 are discarded; callers validate the range first.
func Split14(v uint16) (low, high byte) {
	return byte(v & 0x7F), byte((v >> 7) & 0x7F)
}

// Join14 reassembles a value produced by [Split14].
func Join14(low, high byte) uint16 {
	return uint16(low&0x7F) | uint16(high&0x7F)<<7
}

// JoinLE decodes a little-endian unsigned integer of any length.
// It is used for every controller reply.
func JoinLE(data []byte) int {
	v := 0
	for i, b := range data {
		v += int(b) << (8 * i)
	}

	return v
}

// appendValue validates v as a 14-bit field and appends its two groups.
func appendValue(buf []byte, name string, v int) ([]byte, error) {
	if err := checkRange(name, v, 0, MaxValue); err != nil {
		return buf, err
	}
	low, high := Split14(uint16(v))

	return append(buf, low, high), nil
}

// dataByte validates v as a 7-bit data byte.
func dataByte(name string, v int) (byte, error) {
	if err := checkRange(name, v, 0, MaxDataByte); err != nil {
		return 0, err
	}

	return byte(v), nil
}
