package cansim

import "context"

// VehicleType selects which vehicle's CAN traffic the simulator
// generates.
type VehicleType string

const (
	VehicleVWT7             VehicleType = "VWT7"
	VehicleVWT6             VehicleType = "VWT6"
	VehicleVWT5             VehicleType = "VWT5"
	VehicleMercedesSprinter VehicleType = "MERCEDES_SPRINTER"
	VehicleJeepRenegade     VehicleType = "JEEP_RENEGADE"
)

func VehicleTypes() []VehicleType {
	return []VehicleType{
		VehicleVWT7,
		VehicleVWT6,
		VehicleVWT5,
		VehicleMercedesSprinter,
		VehicleJeepRenegade,
	}
}

type Gear string

const (
	GearPark    Gear = "PARK"
	GearReverse Gear = "REVERSE"
	GearNeutral Gear = "NEUTRAL"
	GearDrive   Gear = "DRIVE"
)

func Gears() []Gear {
	return []Gear{GearPark, GearReverse, GearNeutral, GearDrive}
}

// checkResponse turns a non-ok response into a *CommandError.
func checkResponse(command string, resp *Response) error {
	if resp.OK() {
		return nil
	}
	return &CommandError{
		Command: command,
		Status:  resp.Status,
		Message: resp.StringField("message"),
	}
}

// Ping verifies the firmware is alive and answering commands.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.SendCommand(ctx, "ping", nil, 0)
	if err != nil {
		return err
	}
	return checkResponse("ping", resp)
}

// Status fetches the simulator's current state.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	resp, err := c.SendCommand(ctx, "get_status", nil, 0)
	if err != nil {
		return nil, err
	}
	if err := checkResponse("get_status", resp); err != nil {
		return nil, err
	}
	return statusFromResponse(resp), nil
}

func statusFromResponse(resp *Response) *Status {
	s := &Status{
		Vehicle:         resp.StringField("vehicle"),
		Gear:            resp.StringField("gear"),
		Speed:           resp.IntField("speed"),
		CANActive:       resp.BoolField("can_active"),
		Uptime:          resp.IntField("uptime"),
		FirmwareVersion: resp.StringField("firmware_version"),
	}
	if s.Vehicle == "" {
		s.Vehicle = "unknown"
	}
	if s.Gear == "" {
		s.Gear = "unknown"
	}
	if s.FirmwareVersion == "" {
		s.FirmwareVersion = "unknown"
	}
	return s
}

// SetVehicle switches the simulated vehicle type.
func (c *Client) SetVehicle(ctx context.Context, vehicle VehicleType) error {
	resp, err := c.SendCommand(ctx, "set_vehicle", map[string]interface{}{"vehicle": string(vehicle)}, 0)
	if err != nil {
		return err
	}
	return checkResponse("set_vehicle", resp)
}

// SetGear moves the simulated gear selector.
func (c *Client) SetGear(ctx context.Context, gear Gear) error {
	resp, err := c.SendCommand(ctx, "set_gear", map[string]interface{}{"gear": string(gear)}, 0)
	if err != nil {
		return err
	}
	return checkResponse("set_gear", resp)
}

// SetSpeed sets the simulated speed in km/h.
func (c *Client) SetSpeed(ctx context.Context, kmh int) error {
	resp, err := c.SendCommand(ctx, "set_speed", map[string]interface{}{"speed": kmh}, 0)
	if err != nil {
		return err
	}
	return checkResponse("set_speed", resp)
}

// SetCANActive starts or stops CAN transmission.
func (c *Client) SetCANActive(ctx context.Context, active bool) error {
	resp, err := c.SendCommand(ctx, "set_can_active", map[string]interface{}{"active": active}, 0)
	if err != nil {
		return err
	}
	return checkResponse("set_can_active", resp)
}

// SupportedVehicles asks the firmware which vehicle types it can
// simulate.
func (c *Client) SupportedVehicles(ctx context.Context) ([]string, error) {
	resp, err := c.SendCommand(ctx, "get_supported_vehicles", nil, 0)
	if err != nil {
		return nil, err
	}
	if err := checkResponse("get_supported_vehicles", resp); err != nil {
		return nil, err
	}
	return resp.StringsField("vehicles"), nil
}

// ResetSettings restores the firmware's default settings.
func (c *Client) ResetSettings(ctx context.Context) error {
	resp, err := c.SendCommand(ctx, "reset_settings", nil, 0)
	if err != nil {
		return err
	}
	return checkResponse("reset_settings", resp)
}
