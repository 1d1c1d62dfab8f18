package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, duration, total_increasing
	DeviceClass       string // opening, connectivity, enum, ...
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericSwitch struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericCover struct {
	Device      Device
	Id          string
	Name        string
	UniqueId    string
	DeviceClass string // awning for the pergola roof
	Icon        string
	// SupportsTilt adds the tilt status/command topics to discovery
	SupportsTilt bool
}

type GenericButton struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}
