package transport

import (
	"github.com/warthog618/go-gpiocdev"
)

// gpioLine adapts *gpiocdev.Line to the DirLine interface.
type gpioLine struct {
	line *gpiocdev.Line
}

func openDirLine(chip string, offset int) (DirLine, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("plensor-gatewayd"),
	)
	if err != nil {
		return nil, err
	}
	return &gpioLine{line: line}, nil
}

func (g *gpioLine) SetValue(v int) error {
	return g.line.SetValue(v)
}

func (g *gpioLine) Close() error {
	return g.line.Close()
}
