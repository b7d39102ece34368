package commutelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ts := time.Unix(1717400700, 0)

	assert.Equal(t, "1717400700,22,22\n", FormatLine(Record{Timestamp: ts, CurrentMinutes: 22, BaselineMinutes: 22}))
	assert.Equal(t, "1717400700,30.5,22\n", FormatLine(Record{Timestamp: ts, CurrentMinutes: 30.5, BaselineMinutes: 22}))
	assert.Equal(t, "1717400700,21.95,19\n", FormatLine(Record{Timestamp: ts, CurrentMinutes: 21.95, BaselineMinutes: 19}))
}

func TestLineRoundTrip(t *testing.T) {
	records := []Record{
		{Timestamp: time.Unix(1717400700, 0), CurrentMinutes: 30, BaselineMinutes: 22},
		{Timestamp: time.Unix(1717400760, 0), CurrentMinutes: 22.016666666666666, BaselineMinutes: 19.5},
		{Timestamp: time.Unix(0, 0), CurrentMinutes: 0, BaselineMinutes: 0},
	}

	for _, r := range records {
		parsed, err := ParseLine(FormatLine(r))
		require.NoError(t, err)
		assert.Equal(t, r.Timestamp.Unix(), parsed.Timestamp.Unix())
		assert.Equal(t, r.CurrentMinutes, parsed.CurrentMinutes)
		assert.Equal(t, r.BaselineMinutes, parsed.BaselineMinutes)
	}
}

func TestParseLineLegacyFloatTimestamp(t *testing.T) {
	r, err := ParseLine("1433258700.0,25,22")
	require.NoError(t, err)
	assert.Equal(t, int64(1433258700), r.Timestamp.Unix())
	assert.Equal(t, 25.0, r.CurrentMinutes)
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{"", "1,2", "a,2,3", "1,b,3", "1,2,c", "1,2,3,4"} {
		_, err := ParseLine(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commute_data.csv")

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Record{Timestamp: time.Unix(100, 0), CurrentMinutes: 22, BaselineMinutes: 22}))
	require.NoError(t, w.Close())

	// reopening appends rather than truncating
	w, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Record{Timestamp: time.Unix(160, 0), CurrentMinutes: 30, BaselineMinutes: 22}))

	// each append is flushed before Close
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100,22,22\n160,30,22\n", string(data))
	require.NoError(t, w.Close())

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 30.0, records[1].CurrentMinutes)
}

func TestReadAllReportsLine(t *testing.T) {
	_, err := ReadAll(strings.NewReader("100,22,22\n160,x,22\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestOpenFailsOnDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
