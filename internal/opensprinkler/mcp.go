package opensprinkler

import (
	"context"
	"regexp"

	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
)

// MCP tool wrapper methods.
// Each validates its Args before any network call, builds the query with
// unset optional fields omitted, and returns the controller body unmodified.

// Query returns a wrapper for a parameterless read endpoint.
func (c *Client) Query(path string) func(context.Context, NoArgs) (Payload, error) {
	return func(ctx context.Context, _ NoArgs) (Payload, error) {
		return c.Get(ctx, path, nil)
	}
}

// GetLogMCP reads the watering log (/jl)
func (c *Client) GetLogMCP(ctx context.Context, args GetLogArgs) (Payload, error) {
	if err := checkOptMin("start", args.Start, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("end", args.End, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("hist", args.Hist, 0); err != nil {
		return nil, err
	}
	if err := checkEnum("type", args.Type, "s1", "s2", "rd", "fl", "wl"); err != nil {
		return nil, err
	}

	var p Params
	p.SetOptInt("start", args.Start)
	p.SetOptInt("end", args.End)
	p.SetOptInt("hist", args.Hist)
	p.SetOptString("type", args.Type)
	return c.Get(ctx, "/jl", p)
}

// ChangeControllerVariablesMCP changes controller variables (/cv)
func (c *Client) ChangeControllerVariablesMCP(ctx context.Context, args ChangeControllerVariablesArgs) (Payload, error) {
	if err := checkFlag("en", args.Enable); err != nil {
		return nil, err
	}
	if err := checkOptRange("rd", args.RainDelay, 0, MaxRainDelayHours); err != nil {
		return nil, err
	}
	if err := checkFlag("rsn", args.ResetAll); err != nil {
		return nil, err
	}
	if err := checkFlag("rrsn", args.ResetActive); err != nil {
		return nil, err
	}
	if err := checkFlag("rbt", args.Reboot); err != nil {
		return nil, err
	}

	var p Params
	p.SetOptInt("en", args.Enable)
	p.SetOptInt("rd", args.RainDelay)
	p.SetOptInt("rsn", args.ResetAll)
	p.SetOptInt("rrsn", args.ResetActive)
	p.SetOptInt("rbt", args.Reboot)
	return c.Command(ctx, "/cv", p)
}

// ChangeOptionsMCP changes controller options (/co)
func (c *Client) ChangeOptionsMCP(ctx context.Context, args ChangeOptionsArgs) (Payload, error) {
	p, err := c.configParams(ctx, "options", args.Options, identifierKey, knownOptionKeys)
	if err != nil {
		return nil, err
	}
	return c.Command(ctx, "/co", p)
}

// ManualStationRunMCP opens or closes a single station (/cm)
func (c *Client) ManualStationRunMCP(ctx context.Context, args ManualStationRunArgs) (Payload, error) {
	if err := checkMin("sid", args.StationID, 0); err != nil {
		return nil, err
	}
	if err := checkRange("en", args.Enable, 0, 1); err != nil {
		return nil, err
	}
	if args.Enable == 1 && args.Duration == nil {
		return nil, apierrors.NewValidationError("t", "", "duration is required when opening a station (en=1)")
	}
	if err := checkOptRange("t", args.Duration, 0, MaxStationRunSeconds); err != nil {
		return nil, err
	}
	if err := checkOptRange("qo", args.Queue, 0, maxQueueOptionStation); err != nil {
		return nil, err
	}
	if err := checkFlag("ssta", args.Shift); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("sid", args.StationID)
	p.SetInt("en", args.Enable)
	p.SetOptInt("t", args.Duration)
	p.SetOptInt("qo", args.Queue)
	p.SetOptInt("ssta", args.Shift)
	return c.Command(ctx, "/cm", p)
}

// RunOnceMCP starts a run-once program (/cr)
func (c *Client) RunOnceMCP(ctx context.Context, args RunOnceArgs) (Payload, error) {
	if err := checkDurations("t", args.Durations); err != nil {
		return nil, err
	}
	if err := checkFlag("uwt", args.UseWeather); err != nil {
		return nil, err
	}
	if err := checkOptRange("qo", args.Queue, 0, maxQueueOptionProgram); err != nil {
		return nil, err
	}

	var p Params
	p.Set("t", args.Durations)
	p.SetOptInt("uwt", args.UseWeather)
	p.SetOptInt("qo", args.Queue)
	return c.Command(ctx, "/cr", p)
}

// ManualProgramStartMCP starts a saved program (/mp)
func (c *Client) ManualProgramStartMCP(ctx context.Context, args ManualProgramStartArgs) (Payload, error) {
	if err := checkMin("pid", args.ProgramID, 0); err != nil {
		return nil, err
	}
	if err := checkFlag("uwt", args.UseWeather); err != nil {
		return nil, err
	}
	if err := checkOptRange("qo", args.Queue, 0, maxQueueOptionProgram); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("pid", args.ProgramID)
	p.SetOptInt("uwt", args.UseWeather)
	p.SetOptInt("qo", args.Queue)
	return c.Command(ctx, "/mp", p)
}

// PauseQueueMCP pauses or resumes the program queue (/pq)
func (c *Client) PauseQueueMCP(ctx context.Context, args PauseQueueArgs) (Payload, error) {
	if err := checkOptMin("dur", args.Duration, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("repl", args.Replace, 0); err != nil {
		return nil, err
	}

	var p Params
	p.SetOptInt("dur", args.Duration)
	p.SetOptInt("repl", args.Replace)
	return c.Command(ctx, "/pq", p)
}

// ChangeProgramMCP creates or modifies a program (/cp)
func (c *Client) ChangeProgramMCP(ctx context.Context, args ChangeProgramArgs) (Payload, error) {
	if err := checkMin("pid", args.ProgramID, -1); err != nil {
		return nil, err
	}
	if err := checkJSONArray("v", args.Data); err != nil {
		return nil, err
	}
	if err := checkFlag("en", args.Enable); err != nil {
		return nil, err
	}
	if err := checkFlag("uwt", args.UseWeather); err != nil {
		return nil, err
	}
	if err := checkDateCode("from", args.From); err != nil {
		return nil, err
	}
	if err := checkDateCode("to", args.To); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("pid", args.ProgramID)
	p.SetOptString("v", args.Data)
	p.SetOptString("name", args.Name)
	p.SetOptInt("en", args.Enable)
	p.SetOptInt("uwt", args.UseWeather)
	p.SetOptInt("from", args.From)
	p.SetOptInt("to", args.To)
	return c.Command(ctx, "/cp", p)
}

// DeleteProgramMCP deletes one program, or all with pid -1 (/dp)
func (c *Client) DeleteProgramMCP(ctx context.Context, args ProgramIDArgs) (Payload, error) {
	if err := checkMin("pid", args.ProgramID, -1); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("pid", args.ProgramID)
	return c.Command(ctx, "/dp", p)
}

// MoveProgramUpMCP swaps a program with its predecessor (/up)
func (c *Client) MoveProgramUpMCP(ctx context.Context, args MoveProgramUpArgs) (Payload, error) {
	if err := checkMin("pid", args.ProgramID, 1); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("pid", args.ProgramID)
	return c.Command(ctx, "/up", p)
}

// ChangeStationMCP changes station names and attributes (/cs)
func (c *Client) ChangeStationMCP(ctx context.Context, args ChangeStationArgs) (Payload, error) {
	var p Params
	if len(args.Changes) > 0 {
		changes, _, err := paramMap("changes", args.Changes, stationKey, nil)
		if err != nil {
			return nil, err
		}
		p = changes
	} else if args.StationID == nil && args.StationType == nil && args.StationData == "" {
		return nil, apierrors.NewValidationError("changes", "", "must contain at least one key")
	}
	if err := checkOptMin("sid", args.StationID, 0); err != nil {
		return nil, err
	}
	if err := checkOptRange("st", args.StationType, 0, MaxSpecialStationType); err != nil {
		return nil, err
	}

	p.SetOptInt("sid", args.StationID)
	p.SetOptInt("st", args.StationType)
	p.SetOptString("sd", args.StationData)
	return c.Command(ctx, "/cs", p)
}

// DeleteLogMCP deletes one day of log data, or all of it (/dl)
func (c *Client) DeleteLogMCP(ctx context.Context, args DeleteLogArgs) (Payload, error) {
	day, err := dayValue(args.Day)
	if err != nil {
		return nil, err
	}

	var p Params
	p.Set("day", day)
	return c.Command(ctx, "/dl", p)
}

// SetPasswordMCP changes the device password (/sp). Both values are hashed
// independently; a mismatch is left for the controller to report.
func (c *Client) SetPasswordMCP(ctx context.Context, args SetPasswordArgs) (Payload, error) {
	if err := checkRequired("new_password", args.NewPassword); err != nil {
		return nil, err
	}
	if err := checkRequired("confirm_password", args.ConfirmPassword); err != nil {
		return nil, err
	}

	var p Params
	p.Set("npw", HashPassword(args.NewPassword))
	p.Set("cpw", HashPassword(args.ConfirmPassword))
	return c.Command(ctx, "/sp", p)
}

// ChangeScriptURLsMCP changes the UI and weather script locations (/cu)
func (c *Client) ChangeScriptURLsMCP(ctx context.Context, args ChangeScriptURLsArgs) (Payload, error) {
	var p Params
	p.SetOptString("jsp", args.JavascriptPath)
	p.SetOptString("wsp", args.WeatherScript)
	return c.Command(ctx, "/cu", p)
}

// GetSensorValuesMCP reads sensor values (/sg)
func (c *Client) GetSensorValuesMCP(ctx context.Context, args SensorNumberArgs) (Payload, error) {
	if err := checkOptMin("nr", args.Number, 0); err != nil {
		return nil, err
	}

	var p Params
	p.SetOptInt("nr", args.Number)
	return c.Get(ctx, "/sg", p)
}

// GetSensorLogMCP reads the sensor log (/so). The csv format is returned as
// text.
func (c *Client) GetSensorLogMCP(ctx context.Context, args GetSensorLogArgs) (Payload, error) {
	if err := checkOptMin("nr", args.Number, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("start", args.Start, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("end", args.End, 0); err != nil {
		return nil, err
	}
	if err := checkOptMin("hist", args.Hist, 0); err != nil {
		return nil, err
	}
	if err := checkEnum("format", args.Format, "json", "csv"); err != nil {
		return nil, err
	}

	var p Params
	p.SetOptInt("nr", args.Number)
	p.SetOptInt("start", args.Start)
	p.SetOptInt("end", args.End)
	p.SetOptInt("hist", args.Hist)
	p.SetOptString("format", args.Format)

	if args.Format == "csv" {
		text, err := c.GetText(ctx, "/so", p)
		if err != nil {
			return nil, err
		}
		return Payload(text), nil
	}
	return c.Get(ctx, "/so", p)
}

// ConfigureSensorMCP adds, modifies or deletes a sensor (/sc)
func (c *Client) ConfigureSensorMCP(ctx context.Context, args ConfigureArgs) (Payload, error) {
	return c.configure(ctx, "/sc", args, knownSensorKeys)
}

// ConfigureAdjustmentMCP configures a sensor-based program adjustment (/sb)
func (c *Client) ConfigureAdjustmentMCP(ctx context.Context, args ConfigureArgs) (Payload, error) {
	return c.configure(ctx, "/sb", args, knownAdjustmentKeys)
}

// ConfigureMonitorMCP configures a sensor monitor (/mc)
func (c *Client) ConfigureMonitorMCP(ctx context.Context, args ConfigureArgs) (Payload, error) {
	return c.configure(ctx, "/mc", args, knownMonitorKeys)
}

// ReadSensorNowMCP triggers an immediate sensor read (/sr)
func (c *Client) ReadSensorNowMCP(ctx context.Context, args ReadSensorNowArgs) (Payload, error) {
	if err := checkMin("nr", args.Number, 0); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("nr", args.Number)
	return c.Command(ctx, "/sr", p)
}

// SetIEEE802154ConfigMCP sets the 802.15.4 radio mode (/iw)
func (c *Client) SetIEEE802154ConfigMCP(ctx context.Context, args SetIEEE802154ConfigArgs) (Payload, error) {
	if err := checkRange("activeMode", args.ActiveMode, 0, MaxIEEE802154Mode); err != nil {
		return nil, err
	}

	var p Params
	p.SetInt("activeMode", args.ActiveMode)
	return c.Command(ctx, "/iw", p)
}

// ZigbeeJoinNetworkMCP joins or opens a ZigBee network (/zj)
func (c *Client) ZigbeeJoinNetworkMCP(ctx context.Context, args ZigbeeJoinArgs) (Payload, error) {
	var p Params
	p.SetOptString("action", args.Action)
	return c.Command(ctx, "/zj", p)
}

func (c *Client) configure(ctx context.Context, path string, args ConfigureArgs, known map[string]bool) (Payload, error) {
	if err := requireKey("params", args.Params, "nr"); err != nil {
		return nil, err
	}
	p, err := c.configParams(ctx, "params", args.Params, identifierKey, known)
	if err != nil {
		return nil, err
	}
	return c.Command(ctx, path, p)
}

func (c *Client) configParams(ctx context.Context, name string, m map[string]any, pattern *regexp.Regexp, known map[string]bool) (Params, error) {
	p, unknown, err := paramMap(name, m, pattern, known)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		c.Logger.DebugContext(ctx, "Sending undocumented keys", "map", name, "keys", unknown)
	}
	return p, nil
}
