package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitGlobalCatalog(t *testing.T) {
	require.NoError(t, InitGlobalCatalog())
	require.Equal(t, len(epithets)*len(creatures), CatalogSize())

	for _, c := range ListCards() {
		for _, attr := range AllAttributes {
			v := c.Value(attr)
			require.GreaterOrEqual(t, v, MinAttributeValue, "%s %s", c.ID(), attr)
			require.LessOrEqual(t, v, MaxAttributeValue, "%s %s", c.ID(), attr)
		}
	}
}

func TestGetCard(t *testing.T) {
	require.NoError(t, InitGlobalCatalog())

	c, err := GetCard("ancient-dragon")
	require.NoError(t, err)
	require.Equal(t, "Ancient Dragon", c.Name())

	_, err = GetCard("no-such-card")
	require.Error(t, err)
}

func TestAttributesReturnsCopy(t *testing.T) {
	require.NoError(t, InitGlobalCatalog())

	c, err := GetCard("iron-golem")
	require.NoError(t, err)

	attrs := c.Attributes()
	attrs[Force] = 99
	require.NotEqual(t, 99, c.Value(Force))
}

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		in      string
		want    Attribute
		wantErr bool
	}{
		{"force", Force, false},
		{"speed", Speed, false},
		{"intelligence", Intelligence, false},
		{"rarity", Rarity, false},
		{"FORCE", "", true},
		{"luck", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAttribute(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}
