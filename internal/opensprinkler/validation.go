package opensprinkler

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
)

// Bounds below mirror the limits documented by current firmware. They are
// assumptions about the controller, not protocol guarantees.
const (
	MaxRainDelayHours     = 32767
	MaxStationRunSeconds  = 64800
	MaxSpecialStationType = 6
	MaxIEEE802154Mode     = 3
	MinDateCode           = 33  // Jan 1
	MaxDateCode           = 415 // Dec 31

	maxQueueOptionStation = 1 // append or insert
	maxQueueOptionProgram = 2 // append, insert or replace
)

var (
	identifierKey = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	stationKey    = regexp.MustCompile(`^[smnijkdg][0-9]+$`)
)

// Keys the firmware documents for each configuration endpoint. Keys outside
// these sets are still sent since the set varies between firmware builds.
var (
	knownOptionKeys = keySet(
		"tz", "ntp", "dhcp", "ip1", "ip2", "ip3", "ip4", "gw1", "gw2", "gw3", "gw4",
		"hp0", "hp1", "ar", "ext", "seq", "sdt", "mas", "mton", "mtof", "urs", "rso",
		"wl", "den", "ipas", "devid", "con", "lit", "dim", "bst", "uwt", "ntp1", "ntp2",
		"ntp3", "ntp4", "lg", "mas2", "mton2", "mtof2", "fpr0", "fpr1", "re", "dns1",
		"dns2", "dns3", "dns4", "sar", "ife", "sn1t", "sn1o", "sn2t", "sn2o", "sn1on",
		"sn1of", "sn2on", "sn2of", "subn1", "subn2", "subn3", "subn4", "fwire", "loc",
		"wto", "ifkey", "mqtt", "otc", "dname", "email", "fyta",
	)
	knownSensorKeys = keySet(
		"nr", "type", "group", "name", "ip", "port", "id", "ri", "enable", "log",
		"show", "fac", "div", "unit", "offset", "offset2", "unitid", "url", "topic",
		"filter", "device_ieee", "endpoint", "cluster_id", "attribute_id",
		"poll_interval", "rs485reg", "rs485flags", "rs485code", "delete",
	)
	knownAdjustmentKeys = keySet(
		"nr", "type", "sensor", "prog", "factor1", "factor2", "min", "max", "name",
	)
	knownMonitorKeys = keySet(
		"nr", "type", "sensor", "prog", "zone", "active", "time", "name",
		"maxRuntime", "prio", "reset_seconds", "value1", "value2", "monitor1",
		"monitor2", "invers", "from", "to",
	)
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return apierrors.NewValidationError(field, strconv.Itoa(v),
			fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return nil
}

func checkOptRange(field string, v *int, lo, hi int) error {
	if v == nil {
		return nil
	}
	return checkRange(field, *v, lo, hi)
}

func checkMin(field string, v, lo int) error {
	if v < lo {
		return apierrors.NewValidationError(field, strconv.Itoa(v),
			fmt.Sprintf("must be >= %d", lo))
	}
	return nil
}

func checkOptMin(field string, v *int, lo int) error {
	if v == nil {
		return nil
	}
	return checkMin(field, *v, lo)
}

func checkFlag(field string, v *int) error {
	return checkOptRange(field, v, 0, 1)
}

// checkEnum accepts an empty value as "unset".
func checkEnum(field, v string, allowed ...string) error {
	if v == "" {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return apierrors.NewValidationError(field, v, fmt.Sprintf("must be one of %v", allowed))
}

func checkRequired(field, v string) error {
	if v == "" {
		return apierrors.NewValidationError(field, "", "is required")
	}
	return nil
}

// checkDurations validates a JSON array of non-negative integer durations.
func checkDurations(field, s string) error {
	if err := checkRequired(field, s); err != nil {
		return err
	}
	var values []json.Number
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return apierrors.NewValidationError(field, truncateValue(s), "must be a JSON array of integers")
	}
	if len(values) == 0 {
		return apierrors.NewValidationError(field, s, "must list at least one station")
	}
	for i, n := range values {
		d, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil || d < 0 {
			return apierrors.NewValidationError(fmt.Sprintf("%s[%d]", field, i), n.String(),
				"must be a non-negative integer")
		}
	}
	return nil
}

// checkJSONArray validates that s, when set, is a JSON array.
func checkJSONArray(field, s string) error {
	if s == "" {
		return nil
	}
	var values []json.RawMessage
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return apierrors.NewValidationError(field, truncateValue(s), "must be a JSON array")
	}
	return nil
}

// checkDateCode validates a (month<<5)+day date code.
func checkDateCode(field string, v *int) error {
	if v == nil {
		return nil
	}
	if err := checkRange(field, *v, MinDateCode, MaxDateCode); err != nil {
		return err
	}
	month, day := *v>>5, *v&31
	if month < 1 || month > 12 || day < 1 {
		return apierrors.NewValidationError(field, strconv.Itoa(*v),
			"must encode (month<<5)+day with month 1..12 and day 1..31")
	}
	return nil
}

// EncodeDate returns the (month<<5)+day code used by program date ranges.
func EncodeDate(month, day int) int {
	return month<<5 + day
}

// paramMap converts a key/value map into sorted Params. Values must be JSON
// strings or numbers; integral numbers are rendered without a decimal point.
// It returns the keys outside known, if known is non-nil.
func paramMap(name string, m map[string]any, keyPattern *regexp.Regexp, known map[string]bool) (Params, []string, error) {
	if len(m) == 0 {
		return nil, nil, apierrors.NewValidationError(name, "", "must contain at least one key")
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(Params, 0, len(keys))
	var unknown []string
	for _, k := range keys {
		field := name + "." + k
		if k == passwordParam {
			return nil, nil, apierrors.NewValidationError(field, "", "is reserved for the controller credential")
		}
		if !keyPattern.MatchString(k) {
			return nil, nil, apierrors.NewValidationError(field, "", "is not a valid parameter name")
		}
		v, err := scalarValue(field, m[k])
		if err != nil {
			return nil, nil, err
		}
		if known != nil && !known[k] {
			unknown = append(unknown, k)
		}
		params = append(params, Param{Key: k, Value: v})
	}
	return params, unknown, nil
}

// scalarValue renders a string or number map value.
func scalarValue(field string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return formatNumber(x), nil
	case json.Number:
		return x.String(), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case nil:
		return "", apierrors.NewValidationError(field, "", "must be a string or number, got null")
	default:
		return "", apierrors.NewValidationError(field, "", fmt.Sprintf("must be a string or number, got %s", jsonKind(v)))
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// requireKey checks that a configuration map carries a non-zero integer key.
func requireKey(name string, m map[string]any, key string) error {
	field := name + "." + key
	v, ok := m[key]
	if !ok {
		return apierrors.NewValidationError(field, "", "is required")
	}
	s, err := scalarValue(field, v)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return apierrors.NewValidationError(field, s, "must be a positive integer")
	}
	return nil
}

// dayValue validates the /dl day selector: a non-negative integer or "all".
func dayValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if x == "all" {
			return x, nil
		}
		return "", apierrors.NewValidationError("day", x, `must be a non-negative integer or "all"`)
	case nil:
		return "", apierrors.NewValidationError("day", "", "is required")
	default:
		s, err := scalarValue("day", v)
		if err != nil {
			return "", err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return "", apierrors.NewValidationError("day", s, `must be a non-negative integer or "all"`)
		}
		return s, nil
	}
}

func truncateValue(s string) string {
	return apierrors.Snippet(s)
}
