package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal/quality"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) LookupPLU(code string) (produce.PLUEntry, bool) {
	args := m.Called(code)
	return args.Get(0).(produce.PLUEntry), args.Bool(1)
}

func (m *MockCatalog) LookupTradeName(name string) (core.CultivarID, bool) {
	args := m.Called(name)
	return args.Get(0).(core.CultivarID), args.Bool(1)
}

func (m *MockCatalog) LookupOrigin(label string) (core.RegionID, bool) {
	args := m.Called(label)
	return args.Get(0).(core.RegionID), args.Bool(1)
}

func (m *MockCatalog) LookupState(state string) (core.RegionID, bool) {
	args := m.Called(state)
	return args.Get(0).(core.RegionID), args.Bool(1)
}

var today = time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)

func gapFields(gaps []DataGap) []string {
	fields := make([]string, 0, len(gaps))
	for _, g := range gaps {
		fields = append(fields, g.Field)
	}
	return fields
}

func TestInfer_OrganicPLUWithOrigin(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupPLU", "4012").Return(produce.PLUEntry{Code: "4012", CropID: "orange", CultivarID: "navel_orange"}, true)
	catalog.On("LookupOrigin", "Indian River").Return(core.RegionID("indian_river_fl"), true)

	brix := 12.4
	got := NewBridge(catalog).Infer(Signals{PLU: "94012", Origin: "Indian River", StoreState: "NY", Brix: &brix, AsOf: today})

	require.True(t, got.CanPredict, got.Reason)
	assert.Empty(t, got.Gaps)
	assert.True(t, got.Organic)
	assert.Equal(t, "orange", got.CropID)
	assert.Equal(t, RegionFromOrigin, got.RegionSource)

	require.NotNil(t, got.Input)
	assert.Equal(t, core.CultivarID("navel_orange"), got.Input.CultivarID)
	assert.Equal(t, core.RegionID("indian_river_fl"), got.Input.RegionID)
	assert.Equal(t, today, got.Input.AsOf)
	require.NotNil(t, got.Input.Practices)
	assert.Equal(t, quality.PracticeOrganic, got.Input.Practices.Method)
	require.NotNil(t, got.Input.Measurement)
	assert.Equal(t, 12.4, got.Input.Measurement.Brix)

	catalog.AssertExpectations(t)
	catalog.AssertNotCalled(t, "LookupState", mock.Anything)
}

func TestInfer_TradeNameAndStoreFallback(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupPLU", "4012").Return(produce.PLUEntry{Code: "4012", CropID: "orange", CultivarID: "navel_orange"}, true)
	catalog.On("LookupTradeName", "Cara Cara").Return(core.CultivarID("cara_cara"), true)
	catalog.On("LookupState", "CA").Return(core.RegionID("central_valley_ca"), true)

	got := NewBridge(catalog).Infer(Signals{PLU: "4012", TradeName: "Cara Cara", StoreState: "CA", AsOf: today})

	require.True(t, got.CanPredict)
	assert.False(t, got.Organic)
	assert.Equal(t, core.CultivarID("cara_cara"), got.CultivarID, "trade name is more specific than the PLU")
	assert.Equal(t, RegionFromStore, got.RegionSource)
	assert.Equal(t, []string{FieldOrigin}, gapFields(got.Gaps))
	assert.Nil(t, got.Input.Practices)
	assert.Nil(t, got.Input.Measurement)
}

func TestInfer_UnresolvableSignalsAreGaps(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupTradeName", "Mystery").Return(core.CultivarID(""), false)
	catalog.On("LookupOrigin", "Atlantis").Return(core.RegionID(""), false)
	catalog.On("LookupState", "ZZ").Return(core.RegionID(""), false)

	got := NewBridge(catalog).Infer(Signals{PLU: "12ab", TradeName: "Mystery", Origin: "Atlantis", StoreState: "ZZ", AsOf: today})

	assert.False(t, got.CanPredict)
	assert.Nil(t, got.Input)
	assert.Contains(t, got.Reason, "cultivar")
	assert.Contains(t, got.Reason, "growing region")
	assert.ElementsMatch(t,
		[]string{FieldPLU, FieldTradeName, FieldOrigin, FieldStoreState, FieldCultivar, FieldRegion},
		gapFields(got.Gaps))
	catalog.AssertNotCalled(t, "LookupPLU", mock.Anything)
}

func TestInfer_UnknownPLUAndMissingDate(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("LookupPLU", "4999").Return(produce.PLUEntry{}, false)
	catalog.On("LookupOrigin", "Indian River").Return(core.RegionID("indian_river_fl"), true)

	got := NewBridge(catalog).Infer(Signals{PLU: "4999", Origin: "Indian River"})

	assert.False(t, got.CanPredict)
	assert.Contains(t, got.Reason, "observation date")
	assert.ElementsMatch(t, []string{FieldPLU, FieldTradeName, FieldCultivar, FieldAsOf}, gapFields(got.Gaps))
}

func TestInfer_NothingSupplied(t *testing.T) {
	got := NewBridge(new(MockCatalog)).Infer(Signals{AsOf: today})

	assert.False(t, got.CanPredict)
	assert.NotEmpty(t, got.Reason)
	for _, g := range got.Gaps {
		assert.NotEmpty(t, g.Reason, g.Field)
	}
}

func TestParsePLU(t *testing.T) {
	tests := []struct {
		code    string
		base    string
		organic bool
		ok      bool
	}{
		{"4012", "4012", false, true},
		{"94012", "4012", true, true},
		{"84012", "4012", false, true},
		{"74012", "", false, false},
		{"401", "", false, false},
		{"40x2", "", false, false},
		{"", "", false, false},
	}
	for _, tt := range tests {
		base, organic, ok := ParsePLU(tt.code)
		assert.Equal(t, tt.ok, ok, tt.code)
		assert.Equal(t, tt.base, base, tt.code)
		assert.Equal(t, tt.organic, organic, tt.code)
	}
}
