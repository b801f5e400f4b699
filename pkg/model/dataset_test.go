package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		Name:       "events",
		NumEntries: 100,
		Columns: []Column{
			{Name: "jets@size", Role: RoleSize, ItemBytes: 8, Items: 100},
			{Name: "jets.pt", Role: RoleData, Kind: KindFloat64, ItemBytes: 8, SizeColumn: "jets@size", Items: 340},
			{Name: "muons@size", Role: RoleSize, ItemBytes: 8, Items: 100},
			{Name: "muons.q", Role: RoleData, Kind: KindInt64, ItemBytes: 8, SizeColumn: "muons@size", Items: 210},
		},
	}
}

func TestDataset_Column(t *testing.T) {
	d := testDataset()

	c, ok := d.Column("jets.pt")
	require.True(t, ok)
	assert.Equal(t, RoleData, c.Role)
	assert.Equal(t, "jets@size", c.SizeColumn)

	_, ok = d.Column("missing")
	assert.False(t, ok)
}

func TestDataset_SizeColumns(t *testing.T) {
	d := testDataset()
	assert.Equal(t, []string{"jets@size", "muons@size"}, d.SizeColumns())
}

func TestParseColumnRole(t *testing.T) {
	r, err := ParseColumnRole("size")
	require.NoError(t, err)
	assert.Equal(t, RoleSize, r)

	_, err = ParseColumnRole("shape")
	assert.Error(t, err)
}

func TestParseItemKind(t *testing.T) {
	k, err := ParseItemKind("integer")
	require.NoError(t, err)
	assert.Equal(t, KindInt64, k)

	k, err = ParseItemKind("float64")
	require.NoError(t, err)
	assert.Equal(t, KindFloat64, k)

	_, err = ParseItemKind("decimal")
	assert.Error(t, err)
}

func TestSegmentKey(t *testing.T) {
	assert.Equal(t, "events/jets.pt.col", SegmentKey("events", "jets.pt"))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "data", RoleData.String())
	assert.Equal(t, "size", RoleSize.String())
	assert.Equal(t, "int64", KindInt64.String())
	assert.Equal(t, "unknown", ColumnRole(9).String())
}
