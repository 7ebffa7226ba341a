package frame

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ValueKind selects how a 16-bit packed measurement value is interpreted.
type ValueKind int

const (
	// KindUint decodes the raw 16 bits as an unsigned integer.
	KindUint ValueKind = iota
	// KindFixed decodes the raw 16 bits as sign-magnitude fixed-point.
	KindFixed
)

// TypeInfo describes one measurement-type code.
type TypeInfo struct {
	Name     string
	Kind     ValueKind
	FracBits uint
}

// TypeTable maps measurement-type codes to their value interpretation.
type TypeTable map[uint8]TypeInfo

// Measurement-type codes assigned by the sensor-node firmware.
const (
	TypeTempAir   = 0x01
	TypeTempSoil  = 0x02
	TypeHumidAir  = 0x03
	TypeHumidSoil = 0x04
	TypeVBat      = 0x10
	TypeVMCU      = 0x11
	TypeVTRX      = 0x12
	TypeUptime    = 0x20
	TypeResets    = 0x21
	TypeStatusReg = 0x30
)

// DefaultTypes returns the built-in measurement-type table.
func DefaultTypes() TypeTable {
	return TypeTable{
		TypeTempAir:   {Name: "t_air", Kind: KindFixed, FracBits: 6},
		TypeTempSoil:  {Name: "t_soil", Kind: KindFixed, FracBits: 6},
		TypeHumidAir:  {Name: "h_air", Kind: KindFixed, FracBits: 6},
		TypeHumidSoil: {Name: "h_soil", Kind: KindFixed, FracBits: 6},
		TypeVBat:      {Name: "v_bat", Kind: KindFixed, FracBits: 6},
		TypeVMCU:      {Name: "v_mcu", Kind: KindFixed, FracBits: 6},
		TypeVTRX:      {Name: "v_trx", Kind: KindFixed, FracBits: 6},
		TypeUptime:    {Name: "uptime", Kind: KindUint},
		TypeResets:    {Name: "resets", Kind: KindUint},
		TypeStatusReg: {Name: "sreg", Kind: KindUint},
	}
}

// typeEntry is the YAML shape of one table row.
type typeEntry struct {
	Code     uint8  `yaml:"code"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"` // "uint" / "fixed"
	FracBits uint   `yaml:"frac_bits"`
}

type typeFile struct {
	Types []typeEntry `yaml:"types"`
}

// LoadTypes returns the built-in table merged with entries from the given
// YAML file. File entries override built-ins with the same code. An empty
// path returns the built-in table unchanged.
func LoadTypes(path string) (TypeTable, error) {
	table := DefaultTypes()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type table: %w", err)
	}

	var f typeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse type table: %w", err)
	}

	for _, e := range f.Types {
		info := TypeInfo{Name: e.Name, FracBits: e.FracBits}
		switch e.Kind {
		case "uint":
			info.Kind = KindUint
		case "fixed":
			info.Kind = KindFixed
		default:
			return nil, fmt.Errorf("type table entry %#02x: unknown kind %q (must be uint/fixed)", e.Code, e.Kind)
		}
		table[e.Code] = info
	}
	return table, nil
}

// NameOf returns the table name for a type code, or its hex form when the
// code is not in the table.
func (t TypeTable) NameOf(code uint8) string {
	if info, ok := t[code]; ok {
		return info.Name
	}
	return fmt.Sprintf("0x%02X", code)
}
