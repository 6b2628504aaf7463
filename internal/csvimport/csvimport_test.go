package csvimport

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	in := "Email,First Name,last_name,Company Name,Tags,Favourite Color\n" +
		"ann@acme.io, Ann ,Lee,Acme,vip;saas,blue\n" +
		",,,,,\n" +
		"bob@beta.io,,Stone,Beta,,green\n"

	recs, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "ann@acme.io", recs[0]["email"])
	assert.Equal(t, "Ann", recs[0]["first_name"])
	assert.Equal(t, "Lee", recs[0]["last_name"])
	assert.Equal(t, "Acme", recs[0]["company"])
	assert.Equal(t, []string{"vip", "saas"}, recs[0]["tags"])
	assert.NotContains(t, recs[0], "favourite color")

	// kept so the importer reports it as missing first_name
	assert.Equal(t, "", recs[1]["first_name"])
}

func TestParse_RequiresEmailColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("name,company\nAnn,Acme\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("email,first_name\n")
	for i := 0; i <= MaxRows; i++ {
		fmt.Fprintf(&b, "u%d@x.io,U%d\n", i, i)
	}
	_, err := Parse(strings.NewReader(b.String()))
	assert.ErrorIs(t, err, ErrTooManyRows)
}
