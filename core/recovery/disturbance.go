package recovery

import (
	"fmt"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// Channel names a TimeStep field a disturbance can scale.
type Channel string

const (
	ChannelIrradiance Channel = "irradiance"
	ChannelWindSpeed  Channel = "wind_speed"
	ChannelPV         Channel = "pv"
	ChannelWind       Channel = "wind"
)

// Disturbance scales one channel at one step of the horizon.
type Disturbance struct {
	Name    string  `json:"name"`
	Channel Channel `json:"channel"`
	Index   int     `json:"index"`
	Factor  float64 `json:"factor"`
}

// Cloudburst cuts irradiance to 30% at step 12.
func Cloudburst() Disturbance {
	return Disturbance{Name: "cloudburst", Channel: ChannelIrradiance, Index: 12, Factor: 0.3}
}

// WindDrop cuts wind speed to 40% at step 18.
func WindDrop() Disturbance {
	return Disturbance{Name: "wind_drop", Channel: ChannelWindSpeed, Index: 18, Factor: 0.4}
}

// Validate checks the channel and factor.
func (d Disturbance) Validate() error {
	switch d.Channel {
	case ChannelIrradiance, ChannelWindSpeed, ChannelPV, ChannelWind:
	default:
		return fmt.Errorf("unknown disturbance channel %q", d.Channel)
	}
	if d.Factor < 0 {
		return fmt.Errorf("disturbance %s: negative factor", d.Name)
	}
	return nil
}

// ApplyDisturbances returns a copy of steps with every event applied.
// Events pointing outside the horizon are ignored.
func ApplyDisturbances(steps []model.TimeStep, events ...Disturbance) ([]model.TimeStep, error) {
	out := make([]model.TimeStep, len(steps))
	copy(out, steps)
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		if ev.Index < 0 || ev.Index >= len(out) {
			continue
		}
		st := &out[ev.Index]
		switch ev.Channel {
		case ChannelIrradiance:
			st.Irradiance *= ev.Factor
		case ChannelWindSpeed:
			st.WindSpeed *= ev.Factor
		case ChannelPV:
			st.PV *= ev.Factor
		case ChannelWind:
			st.Wind *= ev.Factor
		}
	}
	return out, nil
}
