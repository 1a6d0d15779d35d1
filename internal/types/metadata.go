package types

import "fmt"

// ID indexes and identifies I/O devices.
type ID uint32

// Direction classifies dataflow in relation to the system. Input
// devices generate data from the outside world; output devices accept
// data and manipulate the outside.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Kind classifies what a device measures or drives.
type Kind string

const (
	KindUnassigned         Kind = "unassigned"
	KindLight              Kind = "light"
	KindPressure           Kind = "pressure"
	KindProximity          Kind = "proximity"
	KindRotationVector     Kind = "rotation_vector"
	KindRelativeHumidity   Kind = "relative_humidity"
	KindAmbientTemperature Kind = "ambient_temperature"
	KindVoltage            Kind = "voltage"
	KindCurrent            Kind = "current"
	KindColor              Kind = "color"
	KindTVOC               Kind = "tvoc"
	KindVocIndex           Kind = "voc_index"
	KindNoxIndex           Kind = "nox_index"
	KindFlow               Kind = "flow"
	KindEC                 Kind = "ec"
	KindPH                 Kind = "ph"
)

// DeviceMetadata stores identity for a physical or abstract device:
// user provided name, numeric id, device kind, and dataflow direction.
//
// Metadata is copied freely (e.g. into scheduled routines) and is
// immutable once embedded in a device except through an explicit
// rename.
type DeviceMetadata struct {
	Name      string    `json:"name"`
	ID        ID        `json:"id"`
	Kind      Kind      `json:"kind"`
	Direction Direction `json:"direction"`
}

func NewMetadata(name string, id ID, kind Kind, direction Direction) DeviceMetadata {
	if kind == "" {
		kind = KindUnassigned
	}
	return DeviceMetadata{
		Name:      name,
		ID:        id,
		Kind:      kind,
		Direction: direction,
	}
}

func (m DeviceMetadata) String() string {
	return fmt.Sprintf("%s device %q (id %d, kind %s)", m.Direction, m.Name, m.ID, m.Kind)
}
