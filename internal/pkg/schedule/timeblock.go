package schedule

import "time"

// Period groups time blocks into the three daily shifts.
type Period string

const (
	// PeriodMorning covers blocks M1-M6
	PeriodMorning Period = "M"
	// PeriodAfternoon covers blocks T1-T6
	PeriodAfternoon Period = "T"
	// PeriodNight covers blocks N1-N4
	PeriodNight Period = "N"
)

// DayOfWeek is the day component of an atomic slot.
// Values match time.Weekday (0 = Sunday) so dates map directly.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// String returns the English day name.
func (d DayOfWeek) String() string {
	if d < Sunday || d > Saturday {
		return "Unknown"
	}
	return dayNames[d]
}

// DayOfDate converts a calendar date to its DayOfWeek.
func DayOfDate(t time.Time) DayOfWeek {
	return DayOfWeek(t.Weekday())
}

// TimeBlock is one entry of the static atomic time-block catalog.
// The catalog is immutable; blocks are identified by their code (e.g. "M1").
type TimeBlock struct {
	Code   string `json:"code"`
	Period Period `json:"period"`
	Start  string `json:"start"` // wall clock "HH:MM"
	End    string `json:"end"`
}

// blockCatalog lists every schedulable atomic block. Morning and afternoon
// shifts carry six 50-minute blocks each, the night shift carries four.
var blockCatalog = []TimeBlock{
	{Code: "M1", Period: PeriodMorning, Start: "07:30", End: "08:20"},
	{Code: "M2", Period: PeriodMorning, Start: "08:20", End: "09:10"},
	{Code: "M3", Period: PeriodMorning, Start: "09:20", End: "10:10"},
	{Code: "M4", Period: PeriodMorning, Start: "10:10", End: "11:00"},
	{Code: "M5", Period: PeriodMorning, Start: "11:10", End: "12:00"},
	{Code: "M6", Period: PeriodMorning, Start: "12:00", End: "12:50"},
	{Code: "T1", Period: PeriodAfternoon, Start: "13:00", End: "13:50"},
	{Code: "T2", Period: PeriodAfternoon, Start: "13:50", End: "14:40"},
	{Code: "T3", Period: PeriodAfternoon, Start: "14:50", End: "15:40"},
	{Code: "T4", Period: PeriodAfternoon, Start: "15:40", End: "16:30"},
	{Code: "T5", Period: PeriodAfternoon, Start: "16:40", End: "17:30"},
	{Code: "T6", Period: PeriodAfternoon, Start: "17:30", End: "18:20"},
	{Code: "N1", Period: PeriodNight, Start: "18:50", End: "19:40"},
	{Code: "N2", Period: PeriodNight, Start: "19:40", End: "20:30"},
	{Code: "N3", Period: PeriodNight, Start: "20:40", End: "21:30"},
	{Code: "N4", Period: PeriodNight, Start: "21:30", End: "22:20"},
}

var blocksByCode = func() map[string]TimeBlock {
	m := make(map[string]TimeBlock, len(blockCatalog))
	for _, b := range blockCatalog {
		m[b.Code] = b
	}
	return m
}()

// Blocks returns a copy of the full time-block catalog in canonical order.
func Blocks() []TimeBlock {
	out := make([]TimeBlock, len(blockCatalog))
	copy(out, blockCatalog)
	return out
}

// BlockByCode looks up a catalog entry by its code.
func BlockByCode(code string) (TimeBlock, bool) {
	b, ok := blocksByCode[code]
	return b, ok
}

// blockIndex returns the catalog position of a block code, used for
// deterministic slot ordering. Unknown codes sort last.
func blockIndex(code string) int {
	for i, b := range blockCatalog {
		if b.Code == code {
			return i
		}
	}
	return len(blockCatalog)
}

// BlockBefore reports whether block a starts before block b in the catalog
// day order.
func BlockBefore(a, b string) bool {
	return blockIndex(a) < blockIndex(b)
}

// Contiguous reports whether block b immediately follows block a in the
// catalog and both belong to the same period. Used only for display merging.
func Contiguous(a, b string) bool {
	ia, ib := blockIndex(a), blockIndex(b)
	if ia >= len(blockCatalog) || ib >= len(blockCatalog) {
		return false
	}
	return ib == ia+1 && blockCatalog[ia].Period == blockCatalog[ib].Period
}
