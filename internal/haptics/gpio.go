package haptics

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOMotor drives a motor transistor from a single output pin.
type GPIOMotor struct {
	pin gpio.PinOut
}

// OpenGPIO initialises the host drivers and looks up the named pin, e.g. "GPIO17".
func OpenGPIO(name string) (*GPIOMotor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host.Init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	m := &GPIOMotor{pin: pin}
	if err := m.Set(false); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GPIOMotor) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := m.pin.Out(level); err != nil {
		return fmt.Errorf("gpio %s out: %w", m.pin.Name(), err)
	}
	return nil
}
