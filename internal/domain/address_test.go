package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samutPrakan = "123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ 10270"

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  หาดใหญ่  ", "หาดใหญ่"},
		{"collapses whitespace", "12  ต.คอหงส์\t\tอ.หาดใหญ่", "12 ต.คอหงส์ อ.หาดใหญ่"},
		{"folds thai digits", "๑๒๓/๔ อ.หาดใหญ่ ๙๐๑๑๐", "123/4 อ.หาดใหญ่ 90110"},
		{"folds sara am variant", "ต\u0e4d\u0e32บลคอหงส์", "ตำบลคอหงส์"},
		{"blank", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
		})
	}
}

func TestHasPostalCode(t *testing.T) {
	assert.True(t, HasPostalCode(samutPrakan))
	assert.True(t, HasPostalCode("10270 อ.เมือง"), "detected anywhere, not only trailing")
	assert.False(t, HasPostalCode("123/4 ต.บางนา"))
}

func TestStripPostalCode(t *testing.T) {
	assert.Equal(t, "123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ", StripPostalCode(samutPrakan))
	assert.Equal(t, "อ.หาดใหญ่", StripPostalCode("อ.หาดใหญ่ 90110 "))
	assert.Equal(t, "10270 อ.เมือง", StripPostalCode("10270 อ.เมือง"), "only a trailing code is removed")
}

func TestAbbreviateFormalTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "already abbreviated, postal code removed",
			in:   samutPrakan,
			want: "123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ",
		},
		{
			name: "formal words abbreviated",
			in:   "45 ตำบลคอหงส์ อำเภอหาดใหญ่ จังหวัดสงขลา 90110",
			want: "45 ต.คอหงส์ อ.หาดใหญ่ จ.สงขลา",
		},
		{
			name: "whitespace after formal word consumed",
			in:   "แขวง บางนา เขตบางนา",
			want: "ข.บางนา เขตบางนา",
		},
		{
			name: "nothing to rewrite",
			in:   "ตลาดกิมหยง หาดใหญ่",
			want: "ตลาดกิมหยง หาดใหญ่",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbbreviateFormalTerms(tt.in))
		})
	}
}

func TestExtractStreetDistrict(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   StreetDistrict
		wantOK bool
	}{
		{
			name:   "number road and district",
			in:     "123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ",
			want:   StreetDistrict{Street: "123 ถ.สุขุมวิท", District: "เมือง"},
			wantOK: true,
		},
		{
			name:   "unit number without road",
			in:     "99/12 ม.3 ต.คอหงส์ อ.หาดใหญ่",
			want:   StreetDistrict{Street: "99/12", District: "หาดใหญ่"},
			wantOK: true,
		},
		{
			name:   "space after road marker",
			in:     "7 ถ. เพชรเกษม อ. หาดใหญ่",
			want:   StreetDistrict{Street: "7 ถ. เพชรเกษม", District: "หาดใหญ่"},
			wantOK: true,
		},
		{name: "no house number", in: "ต.บางนา อ.เมือง"},
		{name: "no district", in: "123 ถ.สุขุมวิท ต.บางนา"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractStreetDistrict(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreetDistrict_Query(t *testing.T) {
	sd := StreetDistrict{Street: "123 ถ.สุขุมวิท", District: "เมือง"}
	assert.Equal(t, "123 ถ.สุขุมวิท อ.เมือง", sd.Query())
}

func TestExtractLocality(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantQuery string
		wantOK    bool
	}{
		{
			name:      "sub-district first",
			in:        "123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ",
			wantQuery: "บางนา เมือง สมุทรปราการ",
			wantOK:    true,
		},
		{
			name:      "district only",
			in:        "ซอย 5 อ.หาดใหญ่",
			wantQuery: "หาดใหญ่",
			wantOK:    true,
		},
		{
			name:      "postal code dropped",
			in:        "บ้านนา จ.สงขลา 90110",
			wantQuery: "สงขลา",
			wantOK:    true,
		},
		{name: "no marker", in: "ตลาดกิมหยง หาดใหญ่"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLocality(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantQuery, got.Query())
			}
		})
	}
}

func TestDefaultStrategies_Rewrites(t *testing.T) {
	addr := NormalizeAddress("45 ตำบลคอหงส์ อำเภอหาดใหญ่ จังหวัดสงขลา 90110")

	want := map[string]string{
		StrategyExact:           "45 ตำบลคอหงส์ อำเภอหาดใหญ่ จังหวัดสงขลา 90110",
		StrategyStripPostalCode: "45 ตำบลคอหงส์ อำเภอหาดใหญ่ จังหวัดสงขลา",
		StrategyAbbreviateTerms: "45 ต.คอหงส์ อ.หาดใหญ่ จ.สงขลา",
		StrategyStreetDistrict:  "45 อ.หาดใหญ่",
		StrategyLocality:        "คอหงส์ หาดใหญ่ สงขลา",
	}

	for _, s := range DefaultStrategies() {
		q, ok := s.Rewrite(addr)
		assert.True(t, ok, s.Name)
		assert.Equal(t, want[s.Name], q, s.Name)
	}
}

func TestRewriteAbbreviateTerms_SkipsWhenUnchanged(t *testing.T) {
	_, ok := rewriteAbbreviateTerms("ตลาดกิมหยง หาดใหญ่")
	assert.False(t, ok)
}

func TestMapLink(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps?q=7.0086,100.4747", MapLink(7.0086, 100.4747))
	assert.Equal(t, "https://www.google.com/maps?q=-33.5,151", MapLink(-33.5, 151))
}
