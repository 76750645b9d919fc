package sensor

// ADC is the analog front end sampled once per cycle. Readings are on the
// 10-bit scale of the appliance, where 1024 means full supply voltage.
type ADC interface {
	Enable() error
	Disable() error
	StartConversion() error
	Ready() (bool, error)
	Result() (uint16, error)
}

// Ensure ADS1115 implements ADC.
var _ ADC = (*ADS1115)(nil)

// Ensure Mock implements ADC.
var _ ADC = (*Mock)(nil)
