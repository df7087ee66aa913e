package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

func yen(v int64) *project.Yen {
	y := project.Yen(v)
	return &y
}

func weeks(v int) *project.Weeks {
	w := project.Weeks(v)
	return &w
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want *project.Range[project.Yen]
	}{
		{"5000円", &project.Range[project.Yen]{Min: yen(5000), Max: yen(5000)}},
		{"5千円未満", &project.Range[project.Yen]{Max: yen(5000)}},
		{"1万5千円", &project.Range[project.Yen]{Min: yen(15000), Max: yen(15000)}},
		{"5000円〜10000円", &project.Range[project.Yen]{Min: yen(5000), Max: yen(10000)}},
		{"見積り希望", nil},
		{"", nil},
		{"ワーカーと相談する", nil},
		{"10,000円 〜 50,000円", &project.Range[project.Yen]{Min: yen(10000), Max: yen(50000)}},
		{"１万円以上", &project.Range[project.Yen]{Min: yen(10000)}},
		{"5万円", &project.Range[project.Yen]{Min: yen(50000), Max: yen(50000)}},
		{"1万2,000円", &project.Range[project.Yen]{Min: yen(12000), Max: yen(12000)}},
		{"時給 2,000 円", &project.Range[project.Yen]{Min: yen(2000), Max: yen(2000)}},
		{"1,500円/時間 〜 3,000円/時間", &project.Range[project.Yen]{Min: yen(1500), Max: yen(3000)}},
		{"〜 5,000円", &project.Range[project.Yen]{Max: yen(5000)}},
		{"３，０００円～", &project.Range[project.Yen]{Min: yen(3000)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestParseMoneyRejectsUnknownText(t *testing.T) {
	for _, in := range []string{"ご予算は別途", "円", "〜", "10000円〜5000円", "abc円",
		"999999999999999999万円", "99999999999999999999円"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseMoney(in)
			assert.Nil(t, got)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want ParseError, got %v", err)
			assert.Equal(t, in, pe.Input)
			assert.Equal(t, "money", pe.Kind)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025年1月1日")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, project.JST)))
	_, offset := got.Zone()
	assert.Equal(t, 9*60*60, offset)
	assert.Equal(t, "2025-01-01T00:00:00+09:00", got.Format(time.RFC3339))

	got, err = ParseDate("掲載日 2025年12月31日 10:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", got.Format("2006-01-02"))

	got, err = ParseDate("２０２５年０３月０９日")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", got.Format("2006-01-02"))

	for _, blank := range []string{"", "   ", "\n\t"} {
		got, err := ParseDate(blank)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	for _, bad := range []string{"13月", "2025年13月1日", "2025年2月30日", "来週", "2025/01/01"} {
		_, err := ParseDate(bad)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), bad)
		assert.Equal(t, bad, pe.Input)
	}
}

func TestParseDateOr(t *testing.T) {
	for _, sentinel := range []string{"ご相談", "-", "なし"} {
		got, err := ParseDateOr(sentinel, "ご相談", "-", "なし")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	got, err := ParseDateOr("2025年5月18日", "ご相談")
	require.NoError(t, err)
	assert.Equal(t, 18, got.Day())

	_, err = ParseDateOr("ご相談")
	require.Error(t, err)
}

func TestParseRelativeDate(t *testing.T) {
	base := time.Date(2025, 1, 30, 0, 0, 0, 0, project.JST)
	got, err := ParseRelativeDate("7日間", base)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-06", got.Format("2006-01-02"))

	got, err = ParseRelativeDate("2025年2月1日", base)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", got.Format("2006-01-02"))

	_, err = ParseRelativeDate("99999999999999999999日間", base)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want *project.Range[project.Weeks]
	}{
		{"3ヶ月", &project.Range[project.Weeks]{Min: weeks(12), Max: weeks(12)}},
		{"2週間以上", &project.Range[project.Weeks]{Min: weeks(2)}},
		{"1週間以内", &project.Range[project.Weeks]{Max: weeks(1)}},
		{"1ヶ月〜3ヶ月", &project.Range[project.Weeks]{Min: weeks(4), Max: weeks(12)}},
		{"1〜3ヶ月", &project.Range[project.Weeks]{Min: weeks(4), Max: weeks(12)}},
		{"1週間〜1ヶ月", &project.Range[project.Weeks]{Min: weeks(1), Max: weeks(4)}},
		{"6ヶ月以上", &project.Range[project.Weeks]{Min: weeks(24)}},
		{"1ヶ月程度", &project.Range[project.Weeks]{Min: weeks(4), Max: weeks(4)}},
		{"2か月未満", &project.Range[project.Weeks]{Max: weeks(8)}},
		{"", nil},
		{"不問", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	for _, bad := range []string{"長期", "3", "3ヶ月〜1ヶ月", "〜", "99999999999999999999ヶ月"} {
		_, err := ParsePeriod(bad)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), bad)
	}
}

func TestParseWorkingTime(t *testing.T) {
	tests := []struct {
		in   string
		want *project.WorkingTime
	}{
		{"30時間/週", &project.WorkingTime{Unit: project.PerWeek, Amount: 30}},
		{"10時間以下/週", &project.WorkingTime{Unit: project.PerWeek, Amount: 10}},
		{"160時間/月", &project.WorkingTime{Unit: project.PerMonth, Amount: 160}},
		{"週20時間程度", &project.WorkingTime{Unit: project.PerWeek, Amount: 20}},
		{"月80時間", &project.WorkingTime{Unit: project.PerMonth, Amount: 80}},
		{"", nil},
		{"不問", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWorkingTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"たくさん", "10時間/日", "時間/週", "99999999999999999999時間/週"} {
		_, err := ParseWorkingTime(bad)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), bad)
	}
}

func TestParsersNeverInvertRanges(t *testing.T) {
	money := []string{"1万円〜2万円", "5千円未満", "1万円以上", "3000円", "〜100円", "100円〜"}
	for _, in := range money {
		r, err := ParseMoney(in)
		require.NoError(t, err)
		assert.True(t, r.Valid(), in)
	}
	periods := []string{"1〜2週間", "1週間〜6ヶ月", "3ヶ月以上", "2週間", "〜1ヶ月"}
	for _, in := range periods {
		r, err := ParsePeriod(in)
		require.NoError(t, err)
		assert.True(t, r.Valid(), in)
	}
}

func TestPlainText(t *testing.T) {
	got, err := PlainText("<p>Go<br>エンジニア</p><script>x()</script><ul><li>リモート</li><li>週3日</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Go エンジニア リモート 週3日", got)
}
