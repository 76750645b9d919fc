//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"image/color"
	"machine"
	"time"

	"github.com/itohio/gothermo/pkg/bargraph"
	"github.com/itohio/gothermo/pkg/power"
	"github.com/itohio/gothermo/pkg/readout"
	"github.com/itohio/gothermo/pkg/telemetry"
	"github.com/itohio/gothermo/pkg/thermistor"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 0}

	adc  machine.ADC
	uart = machine.UART0
	oled = ssd1306.NewI2C(machine.I2C0)

	coord = power.New(power.DefaultInterval)
	cell  = thermistor.NewCell()
)

// screen adapts the panel to the drawing interfaces of tinyfont and the
// bar graph.
type screen struct{}

func (screen) Size() (int16, int16) { return FRAME_WIDTH, FRAME_HEIGHT }

func (screen) SetPixel(x, y int16, c color.RGBA) { oled.SetPixel(x, y, c) }

func (screen) Display() error { return oled.Display() }

func (screen) SetPixelWithoutFlush(x, y int) { oled.SetPixel(int16(x), int16(y), white) }

func (screen) ClearPixelWithoutFlush(x, y int) { oled.SetPixel(int16(x), int16(y), black) }

func main() {
	PIN_THERMISTOR.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_BUZZER.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.InitADC()
	adc = machine.ADC{Pin: PIN_THERMISTOR}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	machine.I2C0.Configure(machine.I2CConfig{Frequency: I2C_FREQUENCY})
	oled.Configure(ssd1306.Config{
		Width:    DISPLAY_WIDTH,
		Height:   DISPLAY_HEIGHT,
		Address:  DISPLAY_ADDRESS,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	time.Sleep(SETTLE_DELAY)
	oled.ClearDisplay()

	var d screen
	drawSplash(d)
	d.Display()
	beep()

	// machine.UART implements WriteByte, so it is the telemetry link.
	reporter := telemetry.NewReporter(uart, cell)
	coord.OnTick(func() {
		if _, err := reporter.Tick(); err != nil {
			println("telemetry:", err.Error())
		}
	})

	ctx := context.Background()
	go coord.Run(ctx)
	go drainSerial()

	for {
		coord.Disable()
		cycle(d)
		coord.Enable()

		coord.Disable()
		coord.Sleep(ctx)
	}
}

// cycle takes one reading and redraws the frame.
func cycle(d screen) {
	raw := int(adc.Get() >> ADC_SHIFT)
	t, err := thermistor.Convert32(raw, SERIES_RESISTANCE)
	cell.Store(t)

	ro, ferr := readout.Format(t.Fahrenheit())
	if err == nil {
		err = ferr
	}

	oled.ClearBuffer()
	drawSplash(d)
	tinyfont.WriteLine(d, &freemono.Bold12pt7b, 0, 26, ro.String(), white)
	bargraph.Render(d, t)
	if derr := d.Display(); derr != nil && err == nil {
		err = derr
	}

	if err != nil {
		println("thermometer:", err.Error())
	}
}

// drawSplash draws the empty tube and the outline of the bulb.
func drawSplash(d screen) {
	left := bargraph.ColumnX - 1
	right := bargraph.ColumnX + bargraph.ColumnWidth
	top := bargraph.BaseY - bargraph.Rows - 1
	for y := top; y < bargraph.BaseY-10; y++ {
		d.SetPixelWithoutFlush(left, y)
		d.SetPixelWithoutFlush(right, y)
	}
	for x := left; x <= right; x++ {
		d.SetPixelWithoutFlush(x, top)
	}

	// Midpoint circle around the bulb.
	const cx, cy, r = 65, 42, 7
	x, y, e := r, 0, 1-r
	for x >= y {
		for _, p := range [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			px, py := cx+p[0], cy+p[1]
			if px >= 0 && px < FRAME_WIDTH && py >= 0 && py < FRAME_HEIGHT {
				d.SetPixelWithoutFlush(px, py)
			}
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

func beep() {
	PIN_BUZZER.High()
	time.Sleep(BEEP_TIME)
	PIN_BUZZER.Low()
}

// drainSerial discards anything received on the UART, one byte per
// interrupt.
func drainSerial() {
	for {
		for uart.Buffered() > 0 {
			coord.Interrupt(func() {
				uart.ReadByte()
			})
		}
		time.Sleep(time.Millisecond)
	}
}
