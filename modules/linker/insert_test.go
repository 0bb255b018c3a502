package linker_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gazettefeed/modules/linker"
)

func TestInsertLinks_SkipsHeading(t *testing.T) {
	doc := "# Distressed Business Buyers\nRead more about distressed business buyers here."
	links := []linker.Link{{URL: "https://adminlist.co.uk/buyers", Keywords: []string{"distressed business buyers"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t,
		"# Distressed Business Buyers\nRead more about [distressed business buyers](https://adminlist.co.uk/buyers) here.",
		res.Document)
	assert.Equal(t, 1, res.LinksAdded)
	require.Len(t, res.Considered, 1)
	assert.Equal(t, 6, res.Considered[0].Score)
}

func TestInsertLinks_MaxLinks(t *testing.T) {
	doc := "alpha bravo charlie delta echo"
	var links []linker.Link
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		links = append(links, linker.Link{URL: "https://example.com/" + w, Keywords: []string{w}})
	}

	res, err := linker.InsertLinks(doc, links, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.LinksAdded)
	assert.Len(t, res.Considered, 2)
	assert.Equal(t, "[alpha](https://example.com/alpha) [bravo](https://example.com/bravo) charlie delta echo", res.Document)
}

func TestInsertLinks_DefaultMax(t *testing.T) {
	var links []linker.Link
	doc := ""
	for i := 0; i < 8; i++ {
		w := string(rune('a'+i)) + "word"
		doc += w + " "
		links = append(links, linker.Link{URL: "https://example.com/" + w, Keywords: []string{w}})
	}

	res, err := linker.InsertLinks(doc, links, 0)
	require.NoError(t, err)
	assert.Equal(t, linker.DefaultMaxLinks, res.LinksAdded)
}

func TestInsertLinks_SkipsExistingLink(t *testing.T) {
	doc := "See [insolvency practitioners](https://a.example) and insolvency practitioners."
	links := []linker.Link{{URL: "https://b.example", Keywords: []string{"insolvency practitioners"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t, "See [insolvency practitioners](https://a.example) and [insolvency practitioners](https://b.example).", res.Document)
	assert.Equal(t, 1, res.LinksAdded)
}

func TestInsertLinks_FallsBackToFirstWord(t *testing.T) {
	doc := "Our guide to administration explains things."
	links := []linker.Link{{URL: "https://example.com/admin", Keywords: []string{"administration process UK"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t, "Our guide to [administration](https://example.com/admin) explains things.", res.Document)
	assert.Equal(t, 1, res.LinksAdded)
}

func TestInsertLinks_PreservesCase(t *testing.T) {
	doc := "Pre-Pack Administration is common"
	links := []linker.Link{{URL: "https://example.com/prepack", Keywords: []string{"pre-pack administration"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t, "[Pre-Pack Administration](https://example.com/prepack) is common", res.Document)
}

func TestInsertLinks_SequentialMutation(t *testing.T) {
	doc := "A company rescue plan."
	links := []linker.Link{
		{URL: "https://example.com/rescue", Keywords: []string{"rescue"}},
		{URL: "https://example.com/company-rescue", Keywords: []string{"company rescue"}},
	}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	// "company rescue" scores higher and goes first; afterwards every
	// "rescue" is inside that link, so the second link finds nothing.
	assert.Equal(t, "A [company rescue](https://example.com/company-rescue) plan.", res.Document)
	assert.Equal(t, 1, res.LinksAdded)
	require.Len(t, res.Considered, 2)
	assert.Equal(t, "https://example.com/company-rescue", res.Considered[0].URL)
}

func TestInsertLinks_NotFoundIsSkipped(t *testing.T) {
	// scored through the heading, but the heading is the only occurrence
	doc := "## Creditors Voluntary Liquidation\nNothing else."
	links := []linker.Link{{URL: "https://example.com/cvl", Keywords: []string{"creditors voluntary liquidation"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t, doc, res.Document)
	assert.Equal(t, 0, res.LinksAdded)
	assert.Len(t, res.Considered, 1)
}

func TestInsertLinks_EmptyDatabase(t *testing.T) {
	doc := "Some text about administration."

	res, err := linker.InsertLinks(doc, nil, 5)
	require.NoError(t, err)

	assert.Equal(t, doc, res.Document)
	assert.Equal(t, 0, res.LinksAdded)
	assert.Empty(t, res.Considered)
}

func TestInsertLinks_NoQualifyingLinks(t *testing.T) {
	doc := "Nothing relevant"
	var links []linker.Link
	for i := 0; i < 12; i++ {
		links = append(links, linker.Link{URL: fmt.Sprintf("https://example.com/%d", i), Keywords: []string{"unrelated phrase"}})
	}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)

	assert.Equal(t, doc, res.Document)
	assert.Equal(t, 0, res.LinksAdded)
	assert.Len(t, res.Considered, 10)
}

func TestInsertLinks_InvalidInput(t *testing.T) {
	links := []linker.Link{{URL: "https://example.com", Keywords: []string{"x"}}}
	_, err := linker.InsertLinks("\xfe", links, 5)
	assert.ErrorIs(t, err, linker.ErrInvalidInput)
}

func TestInsertLinks_SevenHashesIsNotHeading(t *testing.T) {
	doc := "####### company rescue"
	links := []linker.Link{{URL: "https://example.com/r", Keywords: []string{"company rescue"}}}

	res, err := linker.InsertLinks(doc, links, 5)
	require.NoError(t, err)
	assert.Equal(t, "####### [company rescue](https://example.com/r)", res.Document)
}
