package frame

import "time"

// Measurement is a single typed reading from the legacy or packed profiles.
type Measurement struct {
	Type  uint8
	Value float64
}

// Tuple is the fixed use-case reading set carried by the tuple-family and
// aggregated profiles.
type Tuple struct {
	TempAir   float64
	TempSoil  float64
	HumidAir  float64
	HumidSoil float64
}

// Record is one decoded telemetry frame. Immutable once decoded; fields not
// carried by the selected profile stay nil.
type Record struct {
	SNID       string
	Seq        uint32
	ReceivedAt time.Time

	// Typed measurement profiles (legacy-a, packed).
	Measurements []Measurement
	StatusReg    *uint8

	// Use-case tuple profiles (tuple-a/b/c, aggregated).
	Tuple      *Tuple
	Indicators []float64
	Battery    *uint8
	Danger     *float64
	Safe       *float64
}

// Signals returns the use-case readings in classifier window order, or nil
// for profiles that do not carry the tuple.
func (r *Record) Signals() []float64 {
	if r.Tuple == nil {
		return nil
	}
	return []float64{r.Tuple.TempAir, r.Tuple.TempSoil, r.Tuple.HumidAir, r.Tuple.HumidSoil}
}
