package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsn-testbed/clusterhead/internal/frame"
)

func TestBuildRowsTupleRecord(t *testing.T) {
	sreg := uint8(0x03)
	battery := uint8(100)
	danger, safe := 0.0, 1.0
	label := 0
	e := &Entry{
		Record: &frame.Record{
			SNID:       "4155C81D",
			Seq:        1,
			ReceivedAt: time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC),
			Tuple:      &frame.Tuple{TempAir: 23.5, TempSoil: 19.25, HumidAir: 40, HumidSoil: 55},
			StatusReg:  &sreg,
			Battery:    &battery,
			Danger:     &danger,
			Safe:       &safe,
		},
		Label: &label,
		Note:  "sequence gap: expected 0, got 1",
	}

	rows := buildRows(e)
	require.Len(t, rows, 1)
	row := rows[0]
	require.Len(t, row, len(insertColumns))

	assert.Equal(t, "4155C81D", row[0])
	assert.Equal(t, int64(1), row[1])
	assert.Nil(t, row[3], "tuple rows carry no measurement type")
	assert.Equal(t, int64(0x03), row[5])
	assert.Equal(t, 23.5, row[6])
	assert.Equal(t, 55.0, row[9])
	assert.Equal(t, int64(100), row[18])
	assert.Equal(t, 0.0, row[19])
	assert.Equal(t, 1.0, row[20])
	assert.Equal(t, int64(0), row[21])
	assert.Equal(t, "sequence gap: expected 0, got 1", row[22])
}

func TestBuildRowsIndicators(t *testing.T) {
	e := &Entry{
		Record: &frame.Record{
			SNID:       "4155C81D",
			Tuple:      &frame.Tuple{},
			Indicators: []float64{0.5, 0, 0, 0, 0, 0, 0, 0.25},
		},
	}

	rows := buildRows(e)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.5, rows[0][10])
	assert.Equal(t, 0.25, rows[0][17])
	assert.Nil(t, rows[0][21], "no classifier verdict, label stays NULL")
}

func TestBuildRowsFlattensMeasurements(t *testing.T) {
	e := &Entry{
		Record: &frame.Record{
			SNID: "4155C81D",
			Seq:  9,
			Measurements: []frame.Measurement{
				{Type: frame.TypeTempAir, Value: 23.5},
				{Type: frame.TypeVBat, Value: 3.3},
			},
		},
	}

	rows := buildRows(e)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(frame.TypeTempAir), rows[0][3])
	assert.Equal(t, 23.5, rows[0][4])
	assert.Equal(t, int64(frame.TypeVBat), rows[1][3])
	assert.Equal(t, 3.3, rows[1][4])
	assert.Nil(t, rows[0][6], "measurement rows carry no tuple fields")
}

func TestBuildRowsEmptyRecord(t *testing.T) {
	rows := buildRows(&Entry{Record: &frame.Record{SNID: "4155C81D"}})
	assert.Empty(t, rows)
}
