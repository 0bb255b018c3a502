package linker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gazettefeed/modules/linker"
)

type staticSource []linker.Link

func (s staticSource) Links() []linker.Link { return s }

func TestLinkerService_Annotate(t *testing.T) {
	svc := linker.NewLinkerService(staticSource{
		{URL: "https://adminlist.co.uk/buyers", Keywords: []string{"distressed business buyers"}},
	}, nil)

	res, err := svc.Annotate("Notes for distressed business buyers.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Notes for [distressed business buyers](https://adminlist.co.uk/buyers).", res.Document)
	assert.Equal(t, 1, res.LinksAdded)
}

func TestLinkerService_NoSource(t *testing.T) {
	svc := linker.NewLinkerService(nil, nil)

	res, err := svc.Annotate("Unchanged text.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Unchanged text.", res.Document)
	assert.Zero(t, res.LinksAdded)
}
