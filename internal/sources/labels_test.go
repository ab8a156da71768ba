package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"revpulse/pkg/contracts/domain"
)

func TestAliasResolver_Resolve(t *testing.T) {
	r := NewAliasResolver(map[string]string{
		"berko":       "Berkhamsted",
		"berkhamsted": "Berkhamsted",
		"ayles":       "Aylesbury",
		"tring":       "Tring",
		"bury":        "Bury",
	})

	tests := []struct {
		file string
		want string
	}{
		{"berko.jun.25.csv", "Berkhamsted"},
		{"BERKO.JUN.25.CSV", "Berkhamsted"},
		{"Berkhamsted-July.csv", "Berkhamsted"},
		{"jun.ayles.csv", "Aylesbury"},
		{"/data/exports/ayles.sep.25.csv", "Aylesbury"},
		{"aylesbury.csv", "Aylesbury"},
		{"watford.jun.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.file))
		})
	}
}

func TestAliasResolver_LongestThenAlphabetical(t *testing.T) {
	r := NewAliasResolver(map[string]string{
		"ab":  "Short",
		"abc": "Long",
		"xy":  "Other",
	})
	assert.Equal(t, "Long", r.Resolve("abc-xy.csv"))

	tie := NewAliasResolver(map[string]string{"zz": "Zed", "aa": "Ay"})
	assert.Equal(t, "Ay", tie.Resolve("zz-aa.csv"))

	var nilResolver *AliasResolver
	assert.Equal(t, "", nilResolver.Resolve("berko.csv"))
}

func TestPeriodFromFilename(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"berko.jun.25.csv", "June"},
		{"ayles.SEP.25.csv", ""},
		{"berko.JUL.csv", "July"},
		{"ayles.jan.csv", ""},
		{"jul-berko.csv", "July"},
		{"ayles.aug.jun.csv", "August"},
		{"berko.june.csv", ""},
		{"berkojun.csv", ""},
		{"berko_jun.csv", ""},
		{"berko.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodFromFilename(tt.file))
		})
	}
}

func TestPeriodResolver_CustomTokens(t *testing.T) {
	r := NewPeriodResolver(map[string]string{"jun": "June", "jul": "July", "aug": "August", "q3": "Q3"})

	assert.Equal(t, "June", r.Resolve("berko.JUN.25.csv"))
	assert.Equal(t, "Q3", r.Resolve("ayles-q3.csv"))
	assert.Equal(t, "", r.Resolve("ayles.sep.25.csv"))

	var nilResolver *PeriodResolver
	assert.Equal(t, "", nilResolver.Resolve("berko.jun.csv"))
}

func TestPeriodResolver_AllMonths(t *testing.T) {
	tokens := make(map[string]string)
	for _, abbr := range domain.MonthAbbreviations() {
		tokens[abbr], _ = domain.MonthFromAbbreviation(abbr)
	}
	r := NewPeriodResolver(tokens)

	assert.Equal(t, "September", r.Resolve("ayles.sep.25.csv"))
	assert.Equal(t, "January", r.Resolve("berko-JAN.csv"))
	assert.Equal(t, "", r.Resolve("berko.sept.csv"))
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatForPath("a/b/berko.jun.XLSX"))
	assert.Equal(t, FormatCSV, FormatForPath("berko.jun.csv"))
	assert.Equal(t, FormatCSV, FormatForPath("noext"))
}
