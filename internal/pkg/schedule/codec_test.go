package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleGroup(t *testing.T) {
	slots, err := Decode("24M12")
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Day: Monday, Block: "M1"},
		{Day: Monday, Block: "M2"},
		{Day: Wednesday, Block: "M1"},
		{Day: Wednesday, Block: "M2"},
	}, slots)
}

func TestDecodeDayDigitMapping(t *testing.T) {
	cases := []struct {
		digit string
		day   DayOfWeek
	}{
		{"2", Monday},
		{"3", Tuesday},
		{"4", Wednesday},
		{"5", Thursday},
		{"6", Friday},
		{"7", Saturday},
	}
	for _, tc := range cases {
		t.Run(tc.digit, func(t *testing.T) {
			slots, err := Decode(tc.digit + "M1")
			require.NoError(t, err)
			require.Len(t, slots, 1)
			assert.Equal(t, tc.day, slots[0].Day)
		})
	}
}

func TestDecodePeriodLetterMapping(t *testing.T) {
	cases := []struct {
		code  string
		block string
	}{
		{"2M3", "M3"},
		{"2T4", "T4"},
		{"2N2", "N2"},
	}
	for _, tc := range cases {
		slots, err := Decode(tc.code)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, tc.block, slots[0].Block)
	}
}

func TestDecodeMultipleGroupsUnion(t *testing.T) {
	slots, err := Decode("2M12 4M12")
	require.NoError(t, err)

	single, err := Decode("24M12")
	require.NoError(t, err)
	assert.Equal(t, single, slots, "split groups must decode to the same union")
}

func TestDecodeDeduplicatesOverlappingGroups(t *testing.T) {
	slots, err := Decode("2M1 2M1 2M12")
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Day: Monday, Block: "M1"},
		{Day: Monday, Block: "M2"},
	}, slots)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		code string
	}{
		{"empty code", ""},
		{"blank code", "   "},
		{"unknown day digit zero", "0M1"},
		{"unknown day digit one", "1M1"},
		{"unknown day digit eight", "8M1"},
		{"unknown period letter", "2X1"},
		{"lowercase period letter", "2m1"},
		{"missing period letter", "24"},
		{"empty block list", "24M"},
		{"missing day digits", "M12"},
		{"block out of period range", "2N5"},
		{"bad group among good ones", "2M1 9T2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.code)
			require.Error(t, err)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	first, err := Decode("7N12 24M12 3T34")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Decode("7N12 24M12 3T34")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	codes := []string{"24M12", "2M12 4M12", "3T34", "7N12"}
	for _, code := range codes {
		slots, err := Decode(code)
		require.NoError(t, err)
		back, err := Decode(Encode(slots))
		require.NoError(t, err)
		assert.Equal(t, slots, back, "code %q", code)
	}
}

func TestBlockCatalog(t *testing.T) {
	blocks := Blocks()
	assert.Len(t, blocks, 16)

	b, ok := BlockByCode("M1")
	require.True(t, ok)
	assert.Equal(t, PeriodMorning, b.Period)
	assert.Equal(t, "07:30", b.Start)

	_, ok = BlockByCode("X9")
	assert.False(t, ok)
}

func TestContiguous(t *testing.T) {
	assert.True(t, Contiguous("M1", "M2"))
	assert.False(t, Contiguous("M2", "M1"))
	assert.False(t, Contiguous("M6", "T1"), "periods must not merge across shifts")
	assert.False(t, Contiguous("M1", "M3"))
}

func TestDayOfDate(t *testing.T) {
	assert.Equal(t, Monday, DayOfDate(mustDate(t, "2025-03-03")))
	assert.Equal(t, Sunday, DayOfDate(mustDate(t, "2025-03-02")))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
