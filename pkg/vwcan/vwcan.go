// Package vwcan decodes the fixed-offset signals the simulator puts on
// the bus for the VW T7 and T6 instrument clusters. It is the
// counterpart of the firmware's message generators: point a CAN
// adapter at the bus and these helpers tell you what speed and gear
// the cluster will see.
package vwcan

import (
	"fmt"

	"go.einride.tech/can"
)

// Message identifiers per vehicle generation.
const (
	T7SpeedID uint32 = 0x0FD
	T7GearID  uint32 = 0x3DC

	T6SpeedID uint32 = 0x1A0
	T6GearID  uint32 = 0x440
)

// Physical scaling of the raw speed counters.
const (
	t7SpeedFactor = 0.01
	t6SpeedFactor = 0.005
)

var t7GearMap = map[byte]string{
	0x05: "PARK",
	0x04: "REVERSE",
	0x03: "NEUTRAL",
	0x02: "DRIVE",
}

var t6GearMap = map[byte]string{
	0x80: "PARK",
	0x77: "REVERSE",
	0x60: "NEUTRAL",
	0x50: "DRIVE",
}

// DecodeT7Speed extracts km/h from a T7 speed frame (0x0FD). The raw
// counter sits in bytes 4-5, little endian, 0.01 km/h per bit.
func DecodeT7Speed(f can.Frame) (float64, error) {
	if f.ID != T7SpeedID {
		return 0, fmt.Errorf("frame 0x%03X is not a T7 speed frame", f.ID)
	}
	if f.Length < 6 {
		return 0, fmt.Errorf("T7 speed frame too short: %d bytes", f.Length)
	}
	raw := uint16(f.Data[4]) | uint16(f.Data[5])<<8
	return float64(raw) * t7SpeedFactor, nil
}

// DecodeT7Gear extracts the gear selector position from a T7 gear
// frame (0x3DC), byte 5.
func DecodeT7Gear(f can.Frame) (string, error) {
	if f.ID != T7GearID {
		return "", fmt.Errorf("frame 0x%03X is not a T7 gear frame", f.ID)
	}
	if f.Length < 6 {
		return "", fmt.Errorf("T7 gear frame too short: %d bytes", f.Length)
	}
	gear, ok := t7GearMap[f.Data[5]]
	if !ok {
		return "", fmt.Errorf("unknown T7 gear value 0x%02X", f.Data[5])
	}
	return gear, nil
}

// DecodeT6Speed extracts km/h from a T6 speed frame (0x1A0). The raw
// counter is (data[3]<<8)|data[2], 0.005 km/h per bit.
func DecodeT6Speed(f can.Frame) (float64, error) {
	if f.ID != T6SpeedID {
		return 0, fmt.Errorf("frame 0x%03X is not a T6 speed frame", f.ID)
	}
	if f.Length < 4 {
		return 0, fmt.Errorf("T6 speed frame too short: %d bytes", f.Length)
	}
	raw := uint16(f.Data[3])<<8 | uint16(f.Data[2])
	return float64(raw) * t6SpeedFactor, nil
}

// DecodeT6Gear extracts the gear selector position from a T6 gear
// frame (0x440), byte 1.
func DecodeT6Gear(f can.Frame) (string, error) {
	if f.ID != T6GearID {
		return "", fmt.Errorf("frame 0x%03X is not a T6 gear frame", f.ID)
	}
	if f.Length < 2 {
		return "", fmt.Errorf("T6 gear frame too short: %d bytes", f.Length)
	}
	gear, ok := t6GearMap[f.Data[1]]
	if !ok {
		return "", fmt.Errorf("unknown T6 gear value 0x%02X", f.Data[1])
	}
	return gear, nil
}

// Describe renders any known simulator frame for monitoring output;
// unknown identifiers get a hex dump.
func Describe(f can.Frame) string {
	switch f.ID {
	case T7SpeedID:
		if v, err := DecodeT7Speed(f); err == nil {
			return fmt.Sprintf("T7 SPEED 0x%03X %6.1f km/h", f.ID, v)
		}
	case T7GearID:
		if g, err := DecodeT7Gear(f); err == nil {
			return fmt.Sprintf("T7 GEAR  0x%03X %s", f.ID, g)
		}
	case T6SpeedID:
		if v, err := DecodeT6Speed(f); err == nil {
			return fmt.Sprintf("T6 SPEED 0x%03X %6.1f km/h", f.ID, v)
		}
	case T6GearID:
		if g, err := DecodeT6Gear(f); err == nil {
			return fmt.Sprintf("T6 GEAR  0x%03X %s", f.ID, g)
		}
	}
	return fmt.Sprintf("OTHER    0x%03X % X", f.ID, f.Data[:f.Length])
}
