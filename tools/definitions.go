package tools

// AllTools contains all tool specifications for the OpenSprinkler MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// STATUS TOOLS
	// ==========================================================================
	{
		Name:     "get_all",
		Method:   "GetAll",
		Path:     "/ja",
		Title:    "Get All Controller Data",
		Category: "status",
		Description: `Get all OpenSprinkler data in one call: controller variables, options, stations, status and programs. Equivalent to /ja.

USE WHEN: User asks "what is my sprinkler doing", "give me everything", or several areas are needed at once.

NOT FOR: A single area such as programs or station status (use the narrower get_* tool, the payload is much smaller).

RETURNS: The controller's combined JSON document, unmodified.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_controller_variables",
		Method:   "GetControllerVariables",
		Path:     "/jc",
		Title:    "Get Controller Variables",
		Category: "status",
		Description: `Get controller variables: device time, rain delay, flow count, station bits, MQTT/OTC status and reboot info. Equivalent to /jc.

USE WHEN: User asks "is rain delay on", "when did it last reboot", "what time does the controller think it is".

RETURNS: Controller variables as JSON. See opensprinkler://api-overview for reboot cause codes.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_options",
		Method:   "GetOptions",
		Path:     "/jo",
		Title:    "Get Options",
		Category: "status",
		Description: `Get controller options: firmware version, timezone, network config, sensor settings, master stations and water level. Equivalent to /jo.

USE WHEN: User asks about firmware, timezone, watering percentage or master station setup.

NOT FOR: Changing options (use change_options).

RETURNS: Options as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_stations",
		Method:   "GetStations",
		Path:     "/jn",
		Title:    "Get Stations",
		Category: "stations",
		Description: `Get station names and attribute bits (master ops, ignore rain/sensor, disabled, special, group ids). Equivalent to /jn.

USE WHEN: User asks "what zones do I have", "what is station 3 called", or a station index is needed for another tool.

NOT FOR: Which stations are running right now (use get_station_status).

RETURNS: Station names and attribute bitfields as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_station_status",
		Method:   "GetStationStatus",
		Path:     "/js",
		Title:    "Get Station Status",
		Category: "stations",
		Description: `Get the current on/off status of every station. Equivalent to /js.

USE WHEN: User asks "is anything watering", "which zones are on".

RETURNS: Station count and a 0/1 status array as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_programs",
		Method:   "GetPrograms",
		Path:     "/jp",
		Title:    "Get Programs",
		Category: "programs",
		Description: `Get all programs: schedules, durations, flags and names. Equivalent to /jp.

USE WHEN: User asks "what programs are set up", "when does the morning program run", or a program index is needed.

RETURNS: Program data as JSON. See opensprinkler://api-overview for flag bits and start-time encoding.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_special_stations",
		Method:   "GetSpecialStations",
		Path:     "/je",
		Title:    "Get Special Stations",
		Category: "stations",
		Description: `Get special station data (RF, remote, GPIO, HTTP/HTTPS, OTC stations). Equivalent to /je.

USE WHEN: User asks how a remote or RF station is configured.

RETURNS: Special station definitions as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_log",
		Method:   "GetLog",
		Path:     "/jl",
		Title:    "Get Watering Log",
		Category: "logs",
		Description: `Get watering log records for a time range or a history window. Equivalent to /jl.

USE WHEN: User asks "how long did zone 2 water yesterday", "show last week's watering", "when was rain delay triggered".

PARAMETERS:
- start, end: Epoch seconds (optional)
- hist: Days back from today (optional, alternative to start/end)
- type: Special event filter s1, s2, rd, fl or wl (optional)

RETURNS: Log records as JSON arrays.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_debug",
		Method:   "GetDebug",
		Path:     "/db",
		Title:    "Get Debug Info",
		Category: "system",
		Description: `Get debug and diagnostics info: firmware build, heap and RAM. Equivalent to /db.

USE WHEN: Troubleshooting controller stability or memory.

RETURNS: Diagnostics as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// CONTROL TOOLS
	// ==========================================================================
	{
		Name:     "change_controller_variables",
		Method:   "ChangeControllerVariables",
		Path:     "/cv",
		Title:    "Change Controller Variables",
		Category: "control",
		Description: `Enable or disable operation, set rain delay, reset stations, or reboot. Equivalent to /cv.

USE WHEN: User says "turn off the sprinklers", "set a 24 hour rain delay", "stop everything", "reboot the controller".

PARAMETERS:
- en: 1 enables, 0 disables operation (optional)
- rd: Rain delay hours, 0 clears, max 32767 (optional)
- rsn: 1 resets all stations (optional)
- rrsn: 1 resets running stations only (optional)
- rbt: 1 reboots (optional)

RETURNS: Controller result code JSON, {"result":1} on success.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "change_options",
		Method:   "ChangeOptions",
		Path:     "/co",
		Title:    "Change Options",
		Category: "control",
		Description: `Change controller options such as timezone, network, sensors, master stations, water level or logging. Equivalent to /co.

USE WHEN: User says "set watering level to 80%", "change the timezone", "enable logging".

NOT FOR: Rain delay or enable/disable (use change_controller_variables).

PARAMETERS:
- options: Map of option names to string or number values (required, at least one key)

RETURNS: Controller result code JSON.`,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "manual_station_run",
		Method:   "ManualStationRun",
		Path:     "/cm",
		Title:    "Run Station Manually",
		Category: "control",
		Description: `Manually open or close a single station. Equivalent to /cm.

USE WHEN: User says "water zone 3 for 10 minutes", "turn off the front lawn".

NOT FOR: Several stations at once (use run_once) or a saved schedule (use manual_program_start).

PARAMETERS:
- sid: Station index, 0-based (required)
- en: 1 opens, 0 closes (required)
- t: Seconds to run, required when en is 1, max 64800
- qo: 0 appends, 1 inserts at front (optional)
- ssta: 1 shifts remaining stations when closing (optional)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "run_once",
		Method:   "RunOnce",
		Path:     "/cr",
		Title:    "Run Once Program",
		Category: "control",
		Description: `Start a one-off program with a duration for each station. Equivalent to /cr.

USE WHEN: User says "run zones 1 and 3 for 5 minutes each", "quick watering of everything".

PARAMETERS:
- t: JSON array of seconds per station, e.g. [300,0,300] (required)
- uwt: 1 applies the watering level (optional)
- qo: 0 appends, 1 inserts, 2 replaces the queue (optional)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "manual_program_start",
		Method:   "ManualProgramStart",
		Path:     "/mp",
		Title:    "Start Program",
		Category: "control",
		Description: `Manually start a saved program now. Equivalent to /mp.

USE WHEN: User says "run the morning program now".

PARAMETERS:
- pid: Program index, 0-based (required)
- uwt: 1 applies the watering level (optional)
- qo: 0 appends, 1 inserts, 2 replaces the queue (optional)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "pause_queue",
		Method:   "PauseQueue",
		Path:     "/pq",
		Title:    "Pause Queue",
		Category: "control",
		Description: `Pause or resume the program queue. Equivalent to /pq.

USE WHEN: User says "pause watering for an hour", "resume the queue".

PARAMETERS:
- dur: Toggle pause for this many seconds (optional)
- repl: Set or replace the pause duration, 0 cancels (optional)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},

	// ==========================================================================
	// PROGRAM TOOLS
	// ==========================================================================
	{
		Name:     "change_program",
		Method:   "ChangeProgram",
		Path:     "/cp",
		Title:    "Change Program",
		Category: "programs",
		Description: `Create or modify a program. Use pid -1 to create a new one. Equivalent to /cp.

USE WHEN: User says "create a program that waters at 6am", "rename program 2", "disable the evening program".

PARAMETERS:
- pid: -1 for new, otherwise the program index (required)
- v: Program body JSON array [flag,days0,days1,[starts],[durations]] (optional)
- name: Program name (optional)
- en, uwt: Quick toggles, other fields are ignored when set (optional)
- from, to: Date range codes (month<<5)+day (optional)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "delete_program",
		Method:   "DeleteProgram",
		Path:     "/dp",
		Title:    "Delete Program",
		Category: "programs",
		Description: `Delete one program, or all programs with pid -1. Equivalent to /dp.

USE WHEN: User says "delete program 2", "remove all programs".

PARAMETERS:
- pid: Program index, or -1 for all (required)

RETURNS: Controller result code JSON.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "move_program_up",
		Method:   "MoveProgramUp",
		Path:     "/up",
		Title:    "Move Program Up",
		Category: "programs",
		Description: `Move a program up one position, swapping it with its predecessor. Equivalent to /up.

PARAMETERS:
- pid: Program index, 1 or more (required)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},

	// ==========================================================================
	// STATION TOOLS
	// ==========================================================================
	{
		Name:     "change_station",
		Method:   "ChangeStation",
		Path:     "/cs",
		Title:    "Change Stations",
		Category: "stations",
		Description: `Change station names and attribute bits, or define a special station. Equivalent to /cs.

USE WHEN: User says "rename station 1 to Back Yard", "make zone 4 ignore rain", "put station 2 in group 1".

PARAMETERS:
- changes: Map of keys like s0 (name), m0 (master1), n0 (master2), i0 (ignore rain), j0/k0 (ignore sensors), d0 (disable), g0 (group)
- sid, st, sd: Special station index, type 0..6, and data (optional)

RETURNS: Controller result code JSON.`,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// LOG AND SYSTEM TOOLS
	// ==========================================================================
	{
		Name:     "delete_log",
		Method:   "DeleteLog",
		Path:     "/dl",
		Title:    "Delete Log",
		Category: "logs",
		Description: `Delete the log of one day, or every log. Equivalent to /dl.

PARAMETERS:
- day: Day index (epoch seconds / 86400) or "all" (required)

RETURNS: Controller result code JSON.`,
		Destructive: true,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     "set_password",
		Method:   "SetPassword",
		Path:     "/sp",
		Title:    "Set Password",
		Category: "system",
		Description: `Change the device password. Both values are MD5 hashed before sending; the controller reports a mismatch with result 3. Equivalent to /sp.

PARAMETERS:
- new_password: New password (required)
- confirm_password: Confirmation (required)

RETURNS: Controller result code JSON. The server keeps using its configured credential afterwards.`,
		Destructive: true,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     "change_script_urls",
		Method:   "ChangeScriptURLs",
		Path:     "/cu",
		Title:    "Change Script URLs",
		Category: "system",
		Description: `Change the UI javascript path and/or the weather script URL. Equivalent to /cu.

PARAMETERS:
- jsp: UI javascript URL (optional)
- wsp: Weather script URL (optional)

RETURNS: Controller result code JSON.`,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SENSOR TOOLS
	// ==========================================================================
	{
		Name:     "get_sensors",
		Method:   "GetSensors",
		Path:     "/sl",
		Title:    "List Sensors",
		Category: "sensors",
		Description: `List all configured sensors with their current values. Equivalent to /sl.

USE WHEN: User asks "what sensors do I have", "how wet is the soil".

RETURNS: Sensor list as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_sensor_values",
		Method:   "GetSensorValues",
		Path:     "/sg",
		Title:    "Get Sensor Values",
		Category: "sensors",
		Description: `Get sensor values, optionally for one sensor. Equivalent to /sg.

PARAMETERS:
- nr: Sensor number (optional, omit for all)

RETURNS: Sensor values as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_sensor_log",
		Method:   "GetSensorLog",
		Path:     "/so",
		Title:    "Get Sensor Log",
		Category: "sensors",
		Description: `Get logged sensor readings. Equivalent to /so.

USE WHEN: User asks "how did soil moisture change this week".

PARAMETERS:
- nr: Sensor number (optional)
- start, end: Epoch seconds (optional)
- hist: Days back (optional)
- format: json (default) or csv

RETURNS: Log entries as JSON, or CSV text when format is csv.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "configure_sensor",
		Method:   "ConfigureSensor",
		Path:     "/sc",
		Title:    "Configure Sensor",
		Category: "sensors",
		Description: `Add, modify or delete a sensor. Equivalent to /sc.

PARAMETERS:
- params: Map of sensor keys (nr required; type, name, ip, port, topic, fac, div, unit, enable, log, ...)

RETURNS: Controller result code JSON.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "read_sensor_now",
		Method:   "ReadSensorNow",
		Path:     "/sr",
		Title:    "Read Sensor Now",
		Category: "sensors",
		Description: `Trigger an immediate read of one sensor. Equivalent to /sr.

PARAMETERS:
- nr: Sensor number (required)

RETURNS: Controller result code JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "get_sensor_types",
		Method:   "GetSensorTypes",
		Path:     "/sf",
		Title:    "Get Sensor Types",
		Category: "sensors",
		Description: `List the sensor types this firmware supports. Equivalent to /sf.

RETURNS: Sensor type table as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "list_adjustments",
		Method:   "ListAdjustments",
		Path:     "/se",
		Title:    "List Adjustments",
		Category: "sensors",
		Description: `List sensor-based program adjustments. Equivalent to /se.

RETURNS: Adjustments as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "configure_adjustment",
		Method:   "ConfigureAdjustment",
		Path:     "/sb",
		Title:    "Configure Adjustment",
		Category: "sensors",
		Description: `Add, modify or delete a sensor-based program adjustment. Equivalent to /sb.

PARAMETERS:
- params: Map of adjustment keys (nr required; type, sensor, prog, factor1, factor2, min, max)

RETURNS: Controller result code JSON.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "list_monitors",
		Method:   "ListMonitors",
		Path:     "/ml",
		Title:    "List Monitors",
		Category: "sensors",
		Description: `List sensor monitors (threshold-based program triggers). Equivalent to /ml.

RETURNS: Monitors as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "configure_monitor",
		Method:   "ConfigureMonitor",
		Path:     "/mc",
		Title:    "Configure Monitor",
		Category: "sensors",
		Description: `Add, modify or delete a sensor monitor (threshold trigger). Equivalent to /mc.

PARAMETERS:
- params: Map of monitor keys (nr required; type, sensor, prog, zone, value1, value2, maxRuntime, prio)

RETURNS: Controller result code JSON.`,
		Destructive: true,
		OpenWorld:   true,
	},
	{
		Name:     "backup_sensor_config",
		Method:   "BackupSensorConfig",
		Path:     "/sx",
		Title:    "Backup Sensor Config",
		Category: "sensors",
		Description: `Export the full sensor, adjustment and monitor configuration. Equivalent to /sx.

USE WHEN: User asks to back up or copy the sensor setup.

RETURNS: Backup document as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// RADIO TOOLS
	// ==========================================================================
	{
		Name:     "get_ieee802154_config",
		Method:   "GetIEEE802154Config",
		Path:     "/ir",
		Title:    "Get 802.15.4 Config",
		Category: "radio",
		Description: `Read the IEEE 802.15.4 radio mode (ZigBee/Matter). ESP32-C5 only. Equivalent to /ir.

RETURNS: Radio configuration as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "set_ieee802154_config",
		Method:   "SetIEEE802154Config",
		Path:     "/iw",
		Title:    "Set 802.15.4 Config",
		Category: "radio",
		Description: `Set the IEEE 802.15.4 radio mode. ESP32-C5 only. Equivalent to /iw.

PARAMETERS:
- activeMode: 0 WiFi only, 1 Matter, 2 ZigBee gateway, 3 ZigBee client (required)

RETURNS: Controller result code JSON.`,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_zigbee_devices",
		Method:   "GetZigbeeDevices",
		Path:     "/zg",
		Title:    "Get ZigBee Devices",
		Category: "radio",
		Description: `List paired (gateway mode) or discovered ZigBee devices. ESP32-C5 only. Equivalent to /zg.

RETURNS: Device list as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "zigbee_join_network",
		Method:   "ZigbeeJoinNetwork",
		Path:     "/zj",
		Title:    "Join ZigBee Network",
		Category: "radio",
		Description: `Join a ZigBee network (client mode) or open the network for joining (gateway mode). ESP32-C5 only. Equivalent to /zj.

PARAMETERS:
- action: scan, join or open (optional)

RETURNS: Controller reply as JSON.`,
		OpenWorld: true,
	},
	{
		Name:     "get_zigbee_status",
		Method:   "GetZigbeeStatus",
		Path:     "/zs",
		Title:    "Get ZigBee Status",
		Category: "radio",
		Description: `Get ZigBee radio status. ESP32-C5 only. Equivalent to /zs.

RETURNS: Radio status as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_ble_devices",
		Method:   "GetBLEDevices",
		Path:     "/bd",
		Title:    "Get BLE Devices",
		Category: "radio",
		Description: `Scan for or list BLE devices. ESP32 only. Equivalent to /bd.

RETURNS: Device list as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_system_resources",
		Method:   "GetSystemResources",
		Path:     "/du",
		Title:    "Get System Resources",
		Category: "system",
		Description: `Get memory and storage usage. Equivalent to /du.

RETURNS: Resource usage as JSON.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}

// ToolByName returns the spec registered under name.
func ToolByName(name string) (ToolSpec, bool) {
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// Categories returns the tool categories in catalogue order.
func Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, spec := range AllTools {
		if !seen[spec.Category] {
			seen[spec.Category] = true
			cats = append(cats, spec.Category)
		}
	}
	return cats
}
