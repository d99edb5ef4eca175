package musicxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

func TestParseYesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    YesNo
		wantErr bool
	}{
		{in: "yes", want: Yes},
		{in: "no", want: No},
		{in: " yes ", want: Yes},
		{in: "Yes", wantErr: true},
		{in: "true", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseYesNo(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotInEnumeration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, YesNoOf(true).Bool())
	assert.Equal(t, No, YesNoOf(false))
}

func TestParsePositiveDivisions(t *testing.T) {
	t.Parallel()

	d, err := ParsePositiveDivisions("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.5", d.String())

	_, err = ParsePositiveDivisions("0")
	require.ErrorIs(t, err, ErrNotPositive)

	_, err = ParsePositiveDivisions("-2")
	require.ErrorIs(t, err, ErrNotPositive)

	_, err = ParsePositiveDivisions("two")
	require.ErrorIs(t, err, xmlschema.ErrInvalidDecimal)
}

func TestParseTenths(t *testing.T) {
	t.Parallel()

	w, err := ParseTenths("120.0")
	require.NoError(t, err)
	assert.Equal(t, "120.0", w.String())
	assert.True(t, w.Equal(TenthsOf(120).Decimal))
}
