package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// Slot is one atomic (day, block) pair decoded from a schedule code.
type Slot struct {
	Day   DayOfWeek `json:"day"`
	Block string    `json:"block"`
}

// FormatError reports a schedule code that cannot be decoded. It carries the
// offending group so batch importers can surface a per-record message.
type FormatError struct {
	Code   string
	Group  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid schedule code %q: group %q: %s", e.Code, e.Group, e.Reason)
}

// Day digits follow the compact-code convention: 2 = Monday .. 7 = Saturday.
// Sunday has no digit; nothing is scheduled on Sundays.
var dayDigits = map[byte]DayOfWeek{
	'2': Monday,
	'3': Tuesday,
	'4': Wednesday,
	'5': Thursday,
	'6': Friday,
	'7': Saturday,
}

// Decode parses a compact schedule code into its set of atomic slots.
//
// A code is a space-separated list of groups. Each group is a run of day
// digits, one period letter (M, T or N) and a run of block digits; the group
// contributes the cartesian product of its days and blocks, and the full
// result is the union over all groups. "24M12" decodes to Monday and
// Wednesday, morning blocks 1 and 2 — four slots.
//
// The result is sorted (day, then catalog block order) and de-duplicated, so
// decoding is deterministic and safe to re-run.
func Decode(code string) ([]Slot, error) {
	groups := strings.Fields(code)
	if len(groups) == 0 {
		return nil, &FormatError{Code: code, Group: "", Reason: "empty schedule code"}
	}

	seen := make(map[Slot]struct{})
	for _, group := range groups {
		days, period, blocks, err := splitGroup(code, group)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			for _, b := range blocks {
				seen[Slot{Day: d, Block: string(period) + string(b)}] = struct{}{}
			}
		}
	}

	slots := make([]Slot, 0, len(seen))
	for s := range seen {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return blockIndex(slots[i].Block) < blockIndex(slots[j].Block)
	})
	return slots, nil
}

// splitGroup tears one group into day digits, period letter and block digits.
func splitGroup(code, group string) ([]DayOfWeek, Period, []byte, error) {
	var days []DayOfWeek
	i := 0
	for ; i < len(group); i++ {
		c := group[i]
		if c < '0' || c > '9' {
			break
		}
		day, ok := dayDigits[c]
		if !ok {
			return nil, "", nil, &FormatError{Code: code, Group: group, Reason: fmt.Sprintf("unknown day digit %q", c)}
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, "", nil, &FormatError{Code: code, Group: group, Reason: "missing day digits"}
	}

	if i >= len(group) {
		return nil, "", nil, &FormatError{Code: code, Group: group, Reason: "missing period letter"}
	}
	period := Period(group[i])
	if period != PeriodMorning && period != PeriodAfternoon && period != PeriodNight {
		return nil, "", nil, &FormatError{Code: code, Group: group, Reason: fmt.Sprintf("unknown period letter %q", group[i])}
	}
	i++

	var blocks []byte
	for ; i < len(group); i++ {
		c := group[i]
		if _, ok := blocksByCode[string(period)+string(c)]; !ok {
			return nil, "", nil, &FormatError{Code: code, Group: group, Reason: fmt.Sprintf("unknown block digit %q for period %s", c, period)}
		}
		blocks = append(blocks, c)
	}
	if len(blocks) == 0 {
		return nil, "", nil, &FormatError{Code: code, Group: group, Reason: "empty block list"}
	}

	return days, period, blocks, nil
}

// Encode renders a slot set back into compact-code form, one group per
// (day, period) pair. It is the display inverse of Decode; Decode(Encode(s))
// yields s for any valid slot set.
func Encode(slots []Slot) string {
	type key struct {
		day    DayOfWeek
		period Period
	}
	grouped := make(map[key][]string)
	for _, s := range slots {
		if len(s.Block) < 2 {
			continue
		}
		k := key{day: s.Day, period: Period(s.Block[0])}
		grouped[k] = append(grouped[k], s.Block[1:])
	}

	keys := make([]key, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].period < keys[j].period
	})

	var parts []string
	for _, k := range keys {
		digits := grouped[k]
		sort.Strings(digits)
		dayDigit := byte('0' + int(k.day) + 1) // Monday(1) -> '2'
		parts = append(parts, string(dayDigit)+string(k.period)+strings.Join(digits, ""))
	}
	return strings.Join(parts, " ")
}
