package cansim

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

func init() {
	if err := RegisterTransport(&TransportInfo{
		Name:               "serial",
		Description:        "USB serial attached simulator",
		RequiresSerialPort: true,
		New:                NewSerialTransport,
	}); err != nil {
		panic(err)
	}
}

type SerialTransport struct {
	cfg  *Config
	port serial.Port
}

func NewSerialTransport(cfg *Config) (Transport, error) {
	return &SerialTransport{cfg: cfg}, nil
}

func (st *SerialTransport) Name() string { return "serial" }

func (st *SerialTransport) Open(_ context.Context) error {
	mode := &serial.Mode{
		BaudRate: st.cfg.PortBaudrate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(st.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open com port %q : %v", st.cfg.Port, err)
	}
	p.SetReadTimeout(st.cfg.ReadTimeout)
	st.port = p
	return nil
}

func (st *SerialTransport) Read(p []byte) (int, error) {
	if st.port == nil {
		return 0, ErrNotConnected
	}
	return st.port.Read(p)
}

func (st *SerialTransport) Write(p []byte) (int, error) {
	if st.port == nil {
		return 0, ErrNotConnected
	}
	return st.port.Write(p)
}

// Flush is a no-op: the VCP driver writes through without buffering.
func (st *SerialTransport) Flush() error { return nil }

func (st *SerialTransport) Discard() error {
	if st.port == nil {
		return ErrNotConnected
	}
	return st.port.ResetInputBuffer()
}

func (st *SerialTransport) Close() error {
	if st.port == nil {
		return nil
	}
	st.port.ResetInputBuffer()
	st.port.ResetOutputBuffer()
	err := st.port.Close()
	st.port = nil
	if err != nil {
		return fmt.Errorf("failed to close com port: %w", err)
	}
	return nil
}

// ResolvePort validates a port name against the attached serial
// devices. Passing "*" prints every discovered port and returns
// ErrNoDevice, mirroring how the CLI lets you enumerate ports.
func ResolvePort(portName string) (string, error) {
	if runtime.GOOS == "windows" {
		portName = strings.ToUpper(portName)
	}
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial ports found")
	}
	if portName == "*" {
		log.Println("discovered com ports:")
	}
	for _, port := range ports {
		if port.Name == portName || portName == "*" {
			log.Printf("port: %s\n", port.Name)
			if port.IsUSB {
				log.Printf("   USB ID      %s:%s\n", port.VID, port.PID)
				log.Printf("   USB serial  %s\n", port.SerialNumber)
			}
			if portName == "*" {
				continue
			}
			return portName, nil
		}
	}
	return "", ErrNoDevice
}
