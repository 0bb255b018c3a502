package research_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/companieshouse"
	"github.com/guarzo/gazettefeed/modules/linker"
	"github.com/guarzo/gazettefeed/modules/research"
)

type fakeGenerator struct {
	mu       sync.Mutex
	output   string
	err      error
	requests []research.GenerateRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req research.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.output, g.err
}

type fakeRegistry struct {
	companieshouse.CompaniesHouseService
	dossier    *model.Dossier
	err        error
	configured bool
}

func (r *fakeRegistry) Configured() bool { return r.configured }

func (r *fakeRegistry) Dossier(context.Context, string, bool) (*model.Dossier, error) {
	return r.dossier, r.err
}

func strPtr(s string) *string { return &s }

func acmeDossier() *model.Dossier {
	return &model.Dossier{
		Profile: &model.CompanyProfile{
			CompanyName:   "ACME LTD",
			CompanyNumber: "01234567",
			CompanyStatus: "administration",
			SICCodes:      []string{"56101"},
		},
		FinancialData: model.FinancialData{
			Financials:   &model.Financials{NetAssetsFormatted: strPtr("£3k")},
			AccountsDate: "2025-03-31",
		},
	}
}

type staticLinks []linker.Link

func (s staticLinks) Links() []linker.Link { return s }

func newResearch(t *testing.T, reg companieshouse.CompaniesHouseService, gen research.Generator) (research.ResearchService, *common.Cache[[]byte]) {
	drafts := common.NewCache[[]byte]("drafts", 100)
	links := linker.NewLinkerService(staticLinks{
		{URL: "https://adminlist.co.uk/buyers", Keywords: []string{"distressed business buyers"}},
	}, nil)
	svc := research.NewResearchService(reg, gen, links, drafts,
		research.Models{Drafting: "draft-model", Research: "research-model"}, zaptest.NewLogger(t))
	return svc, drafts
}

const generatedBlog = `<h1>Acme Ltd administration: what distressed business buyers should know</h1>
<p class="meta-description">Acme Ltd entered administration.</p>
<h2>Key Takeaways</h2>
<p>Acme Ltd administration is a chance for distressed business buyers.</p>`

func TestDraftBlog(t *testing.T) {
	gen := &fakeGenerator{output: generatedBlog}
	svc, _ := newResearch(t, &fakeRegistry{configured: true, dossier: acmeDossier()}, gen)

	draft, err := svc.DraftBlog(context.Background(), research.Request{CompanyName: "Acme Ltd", NoticeType: "Administration"})
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, "draft-model", req.Model)
	assert.False(t, req.WebSearch)
	assert.Contains(t, req.Prompt, "Company Number: 01234567")
	assert.Contains(t, req.Prompt, "<tr><td>Net Assets</td><td>£3k</td></tr>")
	assert.Contains(t, req.Prompt, "administration restaurants UK")

	assert.Contains(t, draft.Blog, "[distressed business buyers](https://adminlist.co.uk/buyers)")
	assert.Equal(t, 1, draft.Metadata.InternalLinks)
	assert.Equal(t, "Acme Ltd administration", draft.Metadata.PrimaryKeyword)
	assert.Equal(t, 2, draft.Metadata.KeywordDensity.Count)
	assert.Equal(t, "ACME LTD", draft.Metadata.CompanyName)
	require.NotNil(t, draft.Metadata.CompanyNumber)
	assert.Equal(t, "01234567", *draft.Metadata.CompanyNumber)
	assert.False(t, draft.Metadata.Validation.Valid)
	assert.True(t, draft.Metadata.Sources.CompaniesHouse)
	assert.True(t, draft.Metadata.Sources.Financials)
	assert.Equal(t, "fallback", draft.Metadata.Sources.KeywordResearch)
	assert.False(t, draft.Cached)
}

func TestDraftBlog_Cached(t *testing.T) {
	gen := &fakeGenerator{output: generatedBlog}
	svc, drafts := newResearch(t, &fakeRegistry{configured: true, dossier: acmeDossier()}, gen)

	_, err := svc.DraftBlog(context.Background(), research.Request{CompanyName: "Acme Ltd", NoticeType: "Administration"})
	require.NoError(t, err)

	again, err := svc.DraftBlog(context.Background(), research.Request{CompanyName: "ACME LTD", NoticeType: "administration"})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Len(t, gen.requests, 1)
	assert.True(t, drafts.Has("acme ltd:administration"))
}

func TestDraftBlog_WithoutRegistry(t *testing.T) {
	gen := &fakeGenerator{output: generatedBlog}
	svc, _ := newResearch(t, &fakeRegistry{configured: false}, gen)

	draft, err := svc.DraftBlog(context.Background(), research.Request{CompanyName: "Acme Ltd"})
	require.NoError(t, err)
	assert.False(t, draft.Metadata.Sources.CompaniesHouse)
	assert.Nil(t, draft.Metadata.CompanyNumber)
	assert.Contains(t, gen.requests[0].Prompt, "Company data not available from Companies House.")
	assert.Contains(t, gen.requests[0].Prompt, "Gazette Link: https://www.thegazette.co.uk\n")
}

func TestDraftBlog_Errors(t *testing.T) {
	svc, _ := newResearch(t, &fakeRegistry{}, &fakeGenerator{})
	_, err := svc.DraftBlog(context.Background(), research.Request{})
	assert.ErrorIs(t, err, research.ErrCompanyRequired)

	_, err = svc.DraftBlog(context.Background(), research.Request{CompanyName: "Acme"})
	assert.ErrorContains(t, err, "no blog content generated")

	svc, _ = newResearch(t, &fakeRegistry{}, nil)
	_, err = svc.DraftBlog(context.Background(), research.Request{CompanyName: "Acme"})
	assert.ErrorIs(t, err, research.ErrNoGenerator)
}

func TestDraftLinkedIn(t *testing.T) {
	gen := &fakeGenerator{output: "\n  Net assets of £3k.\n\nWe track every UK insolvency.  \n"}
	svc, drafts := newResearch(t, &fakeRegistry{configured: true, dossier: acmeDossier()}, gen)

	post, err := svc.DraftLinkedIn(context.Background(), research.Request{CompanyName: "Acme Ltd", NoticeType: "Administration"})
	require.NoError(t, err)

	assert.Equal(t, "Net assets of £3k.\n\nWe track every UK insolvency.", post.Post)
	assert.Equal(t, len([]rune(post.Post)), post.Metadata.CharacterCount)
	assert.True(t, post.Metadata.Sources.Financials)
	assert.True(t, drafts.Has("acme ltd_linkedin:administration"))
	assert.False(t, drafts.Has("acme ltd:administration"))

	again, err := svc.DraftLinkedIn(context.Background(), research.Request{CompanyName: "Acme Ltd", NoticeType: "Administration"})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Len(t, gen.requests, 1)
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{output: "COMPANY WEBSITE\nacme.example"}
	svc, _ := newResearch(t, &fakeRegistry{configured: true, dossier: acmeDossier()}, gen)

	a, err := svc.Analyze(context.Background(), research.Request{CompanyName: "Acme Ltd"})
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "research-model", gen.requests[0].Model)
	assert.True(t, gen.requests[0].WebSearch)
	assert.Contains(t, gen.requests[0].Prompt, "Company Number: 01234567")

	assert.True(t, strings.HasPrefix(a.Analysis, "\nCOMPANIES HOUSE VERIFIED DATA"))
	assert.Contains(t, a.Analysis, "\n---\n\nWEB RESEARCH\n\nCOMPANY WEBSITE\nacme.example")
	assert.Equal(t, "ACME LTD", a.CompanyName)
	assert.Equal(t, "administration", *a.CompanyStatus)
	assert.True(t, a.Sources.CompaniesHouse)
}

func TestAnalyze_RegistryOutcomes(t *testing.T) {
	tests := []struct {
		name string
		reg  *fakeRegistry
		want string
	}{
		{"no key", &fakeRegistry{}, "COMPANIES HOUSE: API key not configured"},
		{"lookup failed", &fakeRegistry{configured: true, err: errors.New("boom")}, "COMPANIES HOUSE: Unable to fetch data - boom"},
		{"no match", &fakeRegistry{configured: true}, `COMPANIES HOUSE: No matching company found for "Ghost Ltd"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newResearch(t, tt.reg, &fakeGenerator{output: "nothing found"})
			a, err := svc.Analyze(context.Background(), research.Request{CompanyName: "Ghost Ltd"})
			require.NoError(t, err)
			assert.Contains(t, a.Analysis, tt.want)
			assert.Nil(t, a.CompanyNumber)
			assert.Equal(t, "Ghost Ltd", a.CompanyName)
		})
	}
}
