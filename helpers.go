package serial

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// allow tests to override external dependencies
var getDetailedPortsList = enumerator.GetDetailedPortsList

// PortInfo describes one serial port present on the system.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

func (pi PortInfo) String() string {
	if !pi.IsUSB {
		return pi.Name
	}
	s := fmt.Sprintf("%s (USB %s:%s", pi.Name, strings.ToUpper(pi.VID), strings.ToUpper(pi.PID))
	if pi.Product != "" {
		s += " " + pi.Product
	}
	if pi.SerialNumber != "" {
		s += " serial=" + pi.SerialNumber
	}
	return s + ")"
}

// AvailablePorts lists the serial ports the OS currently exposes.
func AvailablePorts() ([]PortInfo, error) {
	details, err := getDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

func checkPortName(portName string) error {
	// Security: Prevent path traversal attacks
	if strings.Contains(portName, "..") {
		return fmt.Errorf("invalid port name: contains path traversal")
	}

	// Security: Reject paths that don't look like serial ports
	// On Unix: /dev/ttyXXX or /dev/cuXXX
	// On Windows: COMX
	if !isValidPortPattern(portName) {
		return fmt.Errorf("port name doesn't match expected pattern: %s", portName)
	}
	return nil
}

func isValidPortPattern(portName string) bool {
	// Windows: COM1-COM999 (must have at least one digit after COM)
	if strings.HasPrefix(portName, "COM") && len(portName) >= 4 && len(portName) <= 6 {
		for _, r := range portName[3:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	// Unix/Linux: /dev/tty* or /dev/cu* (macOS)
	if strings.HasPrefix(portName, "/dev/tty") || strings.HasPrefix(portName, "/dev/cu") {
		return true
	}
	return false
}
