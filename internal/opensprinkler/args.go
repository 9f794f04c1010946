package opensprinkler

// Optional integers are pointers so an explicit 0 is distinguishable from
// an omitted field. Unset optional fields never reach the query string.

// GetLogArgs contains parameters for the watering log query (/jl)
type GetLogArgs struct {
	Start *int   `json:"start,omitempty" jsonschema:"Start time as Unix epoch seconds (inclusive)"`
	End   *int   `json:"end,omitempty" jsonschema:"End time as Unix epoch seconds (inclusive)"`
	Hist  *int   `json:"hist,omitempty" jsonschema:"History window in days back from today (alternative to start/end)"`
	Type  string `json:"type,omitempty" jsonschema:"Filter special events: s1 (sensor 1), s2 (sensor 2), rd (rain delay), fl (flow), wl (water level)"`
}

// ChangeControllerVariablesArgs contains parameters for /cv
type ChangeControllerVariablesArgs struct {
	Enable      *int `json:"en,omitempty" jsonschema:"Enable (1) or disable (0) operation"`
	RainDelay   *int `json:"rd,omitempty" jsonschema:"Rain delay in hours, 0 clears (max 32767)"`
	ResetAll    *int `json:"rsn,omitempty" jsonschema:"Reset all stations (1 to reset)"`
	ResetActive *int `json:"rrsn,omitempty" jsonschema:"Reset running stations only (1 to reset)"`
	Reboot      *int `json:"rbt,omitempty" jsonschema:"Reboot controller (1 to reboot)"`
}

// ChangeOptionsArgs contains parameters for /co
type ChangeOptionsArgs struct {
	Options map[string]any `json:"options" jsonschema:"Option names mapped to new values (string or number), for example tz, wl, sdt, mas, lg, loc, mqtt"`
}

// ManualStationRunArgs contains parameters for /cm
type ManualStationRunArgs struct {
	StationID int  `json:"sid" jsonschema:"Station index (0-based)"`
	Enable    int  `json:"en" jsonschema:"1 opens the station, 0 closes it"`
	Duration  *int `json:"t,omitempty" jsonschema:"Duration in seconds, required when opening (max 64800 = 18h)"`
	Queue     *int `json:"qo,omitempty" jsonschema:"Queue option: 0 appends (default), 1 inserts at front"`
	Shift     *int `json:"ssta,omitempty" jsonschema:"Shift remaining stations in the same group when closing (1 = shift)"`
}

// RunOnceArgs contains parameters for /cr
type RunOnceArgs struct {
	Durations  string `json:"t" jsonschema:"JSON array of per-station durations in seconds, e.g. [60,0,120,0]. 0 skips a station."`
	UseWeather *int   `json:"uwt,omitempty" jsonschema:"Use weather adjustment (1 = yes, 0 = no)"`
	Queue      *int   `json:"qo,omitempty" jsonschema:"Queue option: 0 appends, 1 inserts at front, 2 replaces all (default)"`
}

// ManualProgramStartArgs contains parameters for /mp
type ManualProgramStartArgs struct {
	ProgramID  int  `json:"pid" jsonschema:"Program index (0-based)"`
	UseWeather *int `json:"uwt,omitempty" jsonschema:"Use weather (1 applies the watering level, 0 runs at 100%)"`
	Queue      *int `json:"qo,omitempty" jsonschema:"Queue option: 0 appends, 1 inserts at front, 2 replaces all (default)"`
}

// PauseQueueArgs contains parameters for /pq
type PauseQueueArgs struct {
	Duration *int `json:"dur,omitempty" jsonschema:"Toggle: pauses for dur seconds when no pause is active, cancels an active pause"`
	Replace  *int `json:"repl,omitempty" jsonschema:"Set or replace the pause duration in seconds (takes precedence over dur; 0 cancels)"`
}

// ChangeProgramArgs contains parameters for /cp
type ChangeProgramArgs struct {
	ProgramID  int    `json:"pid" jsonschema:"Program index: -1 creates a new program, 0..N-1 modifies an existing one"`
	Data       string `json:"v,omitempty" jsonschema:"Program body as JSON array: [flag,days0,days1,[start0,start1,start2,start3],[dur0,dur1,...]]"`
	Name       string `json:"name,omitempty" jsonschema:"Program name"`
	Enable     *int   `json:"en,omitempty" jsonschema:"Enable (1) or disable (0) the program; other fields are ignored when set"`
	UseWeather *int   `json:"uwt,omitempty" jsonschema:"Use weather flag; other fields are ignored when set"`
	From       *int   `json:"from,omitempty" jsonschema:"Date range start encoded as (month<<5)+day, 33..415"`
	To         *int   `json:"to,omitempty" jsonschema:"Date range end encoded as (month<<5)+day, 33..415"`
}

// ProgramIDArgs identifies a program for /dp
type ProgramIDArgs struct {
	ProgramID int `json:"pid" jsonschema:"Program index (0-based), or -1 for all programs"`
}

// MoveProgramUpArgs contains parameters for /up
type MoveProgramUpArgs struct {
	ProgramID int `json:"pid" jsonschema:"Program index to move up (must be 1 or more)"`
}

// ChangeStationArgs contains parameters for /cs
type ChangeStationArgs struct {
	Changes     map[string]any `json:"changes" jsonschema:"Attribute keys with station index suffix: s0..sN names, m master1 bits, n master2 bits, i ignore rain, j ignore sensor1, k ignore sensor2, d disable, g group id"`
	StationID   *int           `json:"sid,omitempty" jsonschema:"Special station target index"`
	StationType *int           `json:"st,omitempty" jsonschema:"Special station type: 0 standard, 1 RF, 2 remote, 3 GPIO, 4 HTTP, 5 HTTPS, 6 OTC"`
	StationData string         `json:"sd,omitempty" jsonschema:"Special station data payload"`
}

// DeleteLogArgs contains parameters for /dl
type DeleteLogArgs struct {
	Day any `json:"day" jsonschema:"Day index (epoch seconds / 86400) or the string all to delete every log"`
}

// SetPasswordArgs contains parameters for /sp
type SetPasswordArgs struct {
	NewPassword     string `json:"new_password" jsonschema:"New password in plaintext; it is MD5 hashed before sending"`
	ConfirmPassword string `json:"confirm_password" jsonschema:"Confirmation of the new password; hashed independently"`
}

// ChangeScriptURLsArgs contains parameters for /cu
type ChangeScriptURLsArgs struct {
	JavascriptPath string `json:"jsp,omitempty" jsonschema:"UI javascript path URL"`
	WeatherScript  string `json:"wsp,omitempty" jsonschema:"Weather script URL"`
}

// SensorNumberArgs optionally selects one sensor for /sg
type SensorNumberArgs struct {
	Number *int `json:"nr,omitempty" jsonschema:"Sensor number (omit for all sensors)"`
}

// GetSensorLogArgs contains parameters for /so
type GetSensorLogArgs struct {
	Number *int   `json:"nr,omitempty" jsonschema:"Sensor number"`
	Start  *int   `json:"start,omitempty" jsonschema:"Start time (epoch seconds)"`
	End    *int   `json:"end,omitempty" jsonschema:"End time (epoch seconds)"`
	Hist   *int   `json:"hist,omitempty" jsonschema:"History window in days"`
	Format string `json:"format,omitempty" jsonschema:"Output format: json (default) or csv"`
}

// ConfigureArgs carries a sensor, adjustment or monitor definition
type ConfigureArgs struct {
	Params map[string]any `json:"params" jsonschema:"Configuration keys mapped to string or number values; nr is required"`
}

// ReadSensorNowArgs contains parameters for /sr
type ReadSensorNowArgs struct {
	Number int `json:"nr" jsonschema:"Sensor number to read"`
}

// SetIEEE802154ConfigArgs contains parameters for /iw
type SetIEEE802154ConfigArgs struct {
	ActiveMode int `json:"activeMode" jsonschema:"Radio mode: 0 WiFi only, 1 Matter, 2 ZigBee gateway, 3 ZigBee client"`
}

// ZigbeeJoinArgs contains parameters for /zj
type ZigbeeJoinArgs struct {
	Action string `json:"action,omitempty" jsonschema:"Join action, e.g. scan, join or open"`
}
