// Package ht16k33 drives HT16K33 LED backpacks over Linux I2C: the 8x8
// bicolor matrix and the 4-digit seven-segment display.
package ht16k33

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl request from linux/i2c-dev.h
const i2cSlave = 0x0703

// Bus writes raw bytes to a single device
type Bus interface {
	Write(p []byte) (int, error)
	Close() error
}

// I2CBus is a /dev/i2c-N handle bound to one device address
type I2CBus struct {
	fd   int
	path string
	addr uint16
}

// BusPath returns the device node of I2C bus n
func BusPath(n int) string {
	return fmt.Sprintf("/dev/i2c-%d", n)
}

// OpenI2C opens the bus device node and selects addr as the target
func OpenI2C(path string, addr uint16) (*I2CBus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to select device 0x%02x on %s: %w", addr, path, err)
	}
	return &I2CBus{fd: fd, path: path, addr: addr}, nil
}

func (b *I2CBus) Write(p []byte) (int, error) {
	n, err := unix.Write(b.fd, p)
	if err != nil {
		return n, fmt.Errorf("i2c write to 0x%02x on %s: %w", b.addr, b.path, err)
	}
	return n, nil
}

func (b *I2CBus) Close() error {
	return unix.Close(b.fd)
}
