package companieshouse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gazettefeed/modules/companieshouse"
)

const accountsDoc = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"><body>
<table>
<tr><td>Fixed assets</td>
  <td><ix:nonFraction name="core:TangibleFixedAssets" contextRef="py">10,000</ix:nonFraction></td>
  <td><ix:nonFraction name="core:TangibleFixedAssets" contextRef="cy">12,500</ix:nonFraction></td></tr>
<tr><td>Current assets</td>
  <td><ix:nonFraction name="core:CurrentAssets" contextRef="cy"><span>48,000</span></ix:nonFraction></td></tr>
<tr><td>Creditors</td>
  <td><ix:nonFraction name="core:CreditorsDueWithinOneYear" contextRef="cy" sign="-">75,250</ix:nonFraction></td></tr>
<tr><td>Net liabilities</td>
  <td><ix:nonFraction name="core:NetAssetsLiabilities" contextRef="cy" sign="-" scale="3">14.75</ix:nonFraction></td></tr>
<tr><td>Total assets less current liabilities</td>
  <td><ix:nonFraction name="core:TotalAssetsLessCurrentLiabilities" contextRef="cy">-</ix:nonFraction></td></tr>
</table>
</body></html>`

func TestParseAccounts(t *testing.T) {
	fin, err := companieshouse.ParseAccounts([]byte(accountsDoc))
	require.NoError(t, err)
	require.NotNil(t, fin)

	require.NotNil(t, fin.FixedAssets)
	assert.Equal(t, 12500.0, *fin.FixedAssets)
	assert.Equal(t, "£13k", *fin.FixedAssetsFormatted)

	require.NotNil(t, fin.CurrentAssets)
	assert.Equal(t, 48000.0, *fin.CurrentAssets)

	require.NotNil(t, fin.Liabilities)
	assert.Equal(t, -75250.0, *fin.Liabilities)
	assert.Equal(t, "-£75k", *fin.LiabilitiesFormatted)

	require.NotNil(t, fin.NetAssets)
	assert.Equal(t, -14750.0, *fin.NetAssets)

	assert.Nil(t, fin.TotalAssets)
	assert.Nil(t, fin.TotalAssetsFormatted)
}

func TestParseAccounts_TextFallback(t *testing.T) {
	doc := `<html><body><p>Net assets</p><p>£ 1,250,000</p></body></html>`
	fin, err := companieshouse.ParseAccounts([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, fin)
	require.NotNil(t, fin.NetAssets)
	assert.Equal(t, 1250000.0, *fin.NetAssets)
	assert.Equal(t, "£1.3m", *fin.NetAssetsFormatted)
}

func TestParseAccounts_NothingFound(t *testing.T) {
	fin, err := companieshouse.ParseAccounts([]byte(`<html><body><p>Dormant company</p></body></html>`))
	require.NoError(t, err)
	assert.Nil(t, fin)
}

func TestFormatCurrency(t *testing.T) {
	tests := map[float64]string{
		0:          "£0",
		999:        "£999",
		1000:       "£1k",
		48500:      "£49k",
		-75250:     "-£75k",
		1_250_000:  "£1.3m",
		-2_000_000: "-£2.0m",
	}
	for in, want := range tests {
		assert.Equal(t, want, companieshouse.FormatCurrency(in), "%v", in)
	}
}

func TestSICDescription(t *testing.T) {
	assert.Equal(t, "Restaurants and cafes", companieshouse.SICDescription("56101"))
	assert.Equal(t, "SIC 99999", companieshouse.SICDescription("99999"))
	assert.True(t, companieshouse.KnownSIC("62020"))
	assert.False(t, companieshouse.KnownSIC("99999"))
}
