package rate

import (
	"nburates/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCurrencies_StringAndListAreEquivalent(t *testing.T) {
	fromString, err := ParseCurrencies("USD,EUR")
	require.NoError(t, err)
	fromList, err := ParseCurrencies("USD", "EUR")
	require.NoError(t, err)

	require.Equal(t, []string{"USD", "EUR"}, fromString)
	require.Equal(t, fromString, fromList)
}

func TestParseCurrencies_Normalizes(t *testing.T) {
	cases := []struct {
		name string
		spec []string
		want []string
	}{
		{name: "single", spec: []string{"EUR"}, want: []string{"EUR"}},
		{name: "lower case", spec: []string{"eur"}, want: []string{"EUR"}},
		{name: "spaces", spec: []string{" usd , eur "}, want: []string{"USD", "EUR"}},
		{name: "mixed elements", spec: []string{"USD,EUR", "pln"}, want: []string{"USD", "EUR", "PLN"}},
		{name: "blank element skipped", spec: []string{"USD", "  "}, want: []string{"USD"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCurrencies(tc.spec...)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseCurrencies_InvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		spec    []string
		wantMsg string
	}{
		{name: "nothing", spec: nil, wantMsg: "is empty"},
		{name: "empty string", spec: []string{""}, wantMsg: "is empty"},
		{name: "trailing comma", spec: []string{"USD,"}, wantMsg: "empty currency code"},
		{name: "too long", spec: []string{"EURO"}, wantMsg: `"EURO" must have 3 letters`},
		{name: "digits", spec: []string{"U5D"}, wantMsg: "only letters"},
		{name: "duplicate", spec: []string{"USD,usd"}, wantMsg: "listed twice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCurrencies(tc.spec...)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			require.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
