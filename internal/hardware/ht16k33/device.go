package ht16k33

import (
	"fmt"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
)

const displayRAMSize = 16

const (
	cmdSystemSetup  byte = 0x20
	cmdDisplaySetup byte = 0x80
	cmdBrightness   byte = 0xE0
	oscillatorOn    byte = 0x01
	displayOn       byte = 0x01
)

// Device is an HT16K33 controller with a local copy of its display RAM
type Device struct {
	bus        Bus
	brightness int
	buffer     [displayRAMSize]byte
}

// NewDevice wraps a bus. Brightness is clamped to 0-15.
func NewDevice(bus Bus, brightness int) *Device {
	return &Device{bus: bus, brightness: clampBrightness(brightness)}
}

func clampBrightness(b int) int {
	if b < 0 {
		return 0
	}
	if b > constants.MaxBrightness {
		return constants.MaxBrightness
	}
	return b
}

// Begin starts the oscillator, turns the display on without blinking and
// applies the brightness
func (d *Device) Begin() error {
	if err := d.command(cmdSystemSetup | oscillatorOn); err != nil {
		return fmt.Errorf("failed to start oscillator: %w", err)
	}
	if err := d.command(cmdDisplaySetup | displayOn); err != nil {
		return fmt.Errorf("failed to enable display: %w", err)
	}
	return d.SetBrightness(d.brightness)
}

// SetBrightness sets the dimming level, 0-15
func (d *Device) SetBrightness(b int) error {
	d.brightness = clampBrightness(b)
	return d.command(cmdBrightness | byte(d.brightness))
}

// Brightness returns the current dimming level
func (d *Device) Brightness() int {
	return d.brightness
}

// ClearBuffer zeroes the local display RAM copy
func (d *Device) ClearBuffer() {
	d.buffer = [displayRAMSize]byte{}
}

// Buffer returns a copy of the local display RAM
func (d *Device) Buffer() [displayRAMSize]byte {
	return d.buffer
}

// WriteDisplay sends the whole display RAM starting at address 0
func (d *Device) WriteDisplay() error {
	payload := make([]byte, 0, displayRAMSize+1)
	payload = append(payload, 0x00)
	payload = append(payload, d.buffer[:]...)
	if _, err := d.bus.Write(payload); err != nil {
		return fmt.Errorf("failed to write display RAM: %w", err)
	}
	return nil
}

// SetLED sets or clears one of the 128 LEDs in the buffer
func (d *Device) SetLED(led int, on bool) {
	if led < 0 || led >= displayRAMSize*8 {
		return
	}
	pos, offset := led/8, uint(led%8)
	if on {
		d.buffer[pos] |= 1 << offset
	} else {
		d.buffer[pos] &^= 1 << offset
	}
}

// Close releases the bus. The controller keeps showing its display RAM,
// so call Clear first to blank it.
func (d *Device) Close() error {
	return d.bus.Close()
}

func (d *Device) command(c byte) error {
	_, err := d.bus.Write([]byte{c})
	return err
}
