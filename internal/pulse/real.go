//go:build linux

package pulse

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource delivers edges from actual hardware using Linux GPIO character
// device edge events.
type RealSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewRealSource opens the GPIO chip and prepares the sensor pin.
// Edge delivery does not begin until Start is called.
func NewRealSource(pin int) (*RealSource, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealSource{chip: chip, pin: pin}, nil
}

// Start requests the sensor line with a rising-edge event handler.
// The handler runs on the gpiocdev event goroutine and must only touch
// the accumulator, so onEdge should be Accumulator.OnEdge or a thin
// wrapper around it.
func (s *RealSource) Start(onEdge func()) error {
	// Pull-up to match the open-collector output of hall-effect flow sensors.
	line, err := s.chip.RequestLine(s.pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			onEdge()
		}))
	if err != nil {
		return fmt.Errorf("request sensor pin %d: %w", s.pin, err)
	}
	s.line = line
	return nil
}

// Close releases GPIO resources. The pin is reconfigured to a plain input
// so it is in a clean state for system shutdown/reboot.
func (s *RealSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure sensor pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
