package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/companieshouse"
	"github.com/guarzo/gazettefeed/modules/linker"
)

const (
	// DraftTTL is how long generated drafts are reused.
	DraftTTL = 24 * time.Hour

	blogWordCount     = 650
	blogMaxLinks      = 5
	blogMaxTokens     = 8192
	postMaxTokens     = 4096
	researchMaxTokens = 8192

	defaultNoticeType = "Administration"
	defaultNoticeDate = "Recent"
	defaultNoticeLink = "https://www.thegazette.co.uk"
)

// ErrCompanyRequired is returned when a request names no company.
var ErrCompanyRequired = errors.New("company name is required")

// Request identifies the notice a draft or analysis is about.
type Request struct {
	CompanyName string `json:"companyName"`
	NoticeType  string `json:"noticeType"`
	NoticeDate  string `json:"noticeDate"`
	NoticeLink  string `json:"noticeLink"`
}

type Sources struct {
	CompaniesHouse  bool   `json:"companiesHouse"`
	WebSearch       bool   `json:"webSearch,omitempty"`
	Financials      bool   `json:"financials,omitempty"`
	KeywordResearch string `json:"keywordResearch,omitempty"`
}

// Analysis combines registry data with web research.
type Analysis struct {
	Analysis      string  `json:"analysis"`
	CompanyName   string  `json:"companyName"`
	CompanyNumber *string `json:"companyNumber"`
	CompanyStatus *string `json:"companyStatus"`
	GeneratedAt   string  `json:"generatedAt"`
	Sources       Sources `json:"sources"`
}

type BlogMetadata struct {
	Title           *string        `json:"title"`
	MetaDescription *string        `json:"metaDescription"`
	WordCount       int            `json:"wordCount"`
	PrimaryKeyword  string         `json:"primaryKeyword"`
	SearchVolume    *int           `json:"searchVolume"`
	KeywordDensity  linker.Density `json:"keywordDensity"`
	InternalLinks   int            `json:"internalLinks"`
	GeneratedAt     string         `json:"generatedAt"`
	CompanyName     string         `json:"companyName"`
	CompanyNumber   *string        `json:"companyNumber"`
	Validation      Validation     `json:"validation"`
	Sources         Sources        `json:"sources"`
}

// BlogDraft is a generated, validated and linked blog post.
type BlogDraft struct {
	Blog     string       `json:"blog"`
	Metadata BlogMetadata `json:"metadata"`
	Cached   bool         `json:"cached,omitempty"`
}

type PostMetadata struct {
	CompanyName    string  `json:"companyName"`
	CompanyNumber  *string `json:"companyNumber"`
	CharacterCount int     `json:"characterCount"`
	GeneratedAt    string  `json:"generatedAt"`
	Sources        Sources `json:"sources"`
}

// LinkedInDraft is a generated social post.
type LinkedInDraft struct {
	Post     string       `json:"post"`
	Metadata PostMetadata `json:"metadata"`
	Cached   bool         `json:"cached,omitempty"`
}

// Models names the generation models per task.
type Models struct {
	Drafting string
	Research string
}

// ResearchService produces analyses and drafts for insolvency notices.
type ResearchService interface {
	Analyze(ctx context.Context, req Request) (*Analysis, error)
	DraftBlog(ctx context.Context, req Request) (*BlogDraft, error)
	DraftLinkedIn(ctx context.Context, req Request) (*LinkedInDraft, error)
}

type researchService struct {
	registry  companieshouse.CompaniesHouseService
	generator Generator
	linker    linker.LinkerService
	drafts    common.CacheRepository[[]byte]
	models    Models
	logger    *zap.Logger
	now       func() time.Time
}

// NewResearchService wires the registry, generator, linker and draft
// cache. A nil generator makes every operation fail with ErrNoGenerator.
func NewResearchService(registry companieshouse.CompaniesHouseService, generator Generator, links linker.LinkerService,
	drafts common.CacheRepository[[]byte], models Models, logger *zap.Logger) ResearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &researchService{
		registry:  registry,
		generator: generator,
		linker:    links,
		drafts:    drafts,
		models:    models,
		logger:    logger,
		now:       time.Now,
	}
}

func (r Request) withDefaults() Request {
	if r.NoticeType == "" {
		r.NoticeType = defaultNoticeType
	}
	if r.NoticeDate == "" {
		r.NoticeDate = defaultNoticeDate
	}
	if r.NoticeLink == "" {
		r.NoticeLink = defaultNoticeLink
	}
	return r
}

// dossier loads registry data, treating every failure as "no data".
func (s *researchService) dossier(ctx context.Context, name string, withFinancials bool) (*model.Dossier, error) {
	if s.registry == nil || !s.registry.Configured() {
		return nil, companieshouse.ErrNoAPIKey
	}
	d, err := s.registry.Dossier(ctx, name, withFinancials)
	if err != nil {
		s.logger.Error("companies house lookup failed", zap.String("company", name), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// Analyze combines the registry dossier with a web-grounded research pass.
func (s *researchService) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, ErrCompanyRequired
	}

	d, chErr := s.dossier(ctx, req.CompanyName, false)
	var registry string
	switch {
	case d != nil:
		registry = RegistryReport(d)
	case errors.Is(chErr, companieshouse.ErrNoAPIKey):
		registry = "\nCOMPANIES HOUSE: API key not configured\n"
	case chErr != nil:
		registry = fmt.Sprintf("\nCOMPANIES HOUSE: Unable to fetch data - %v\n", chErr)
	default:
		registry = fmt.Sprintf("\nCOMPANIES HOUSE: No matching company found for %q\n", req.CompanyName)
	}

	if s.generator == nil {
		return nil, ErrNoGenerator
	}

	data := PromptData{
		CompanyName:   req.CompanyName,
		CompanyNumber: d.Number(),
		NoticeType:    req.NoticeType,
		NoticeDate:    req.NoticeDate,
	}
	prompt, err := render(researchTmpl, data)
	if err != nil {
		return nil, fmt.Errorf("render research prompt: %w", err)
	}

	web, err := s.generator.Generate(ctx, GenerateRequest{
		Model:     s.models.Research,
		Prompt:    prompt,
		MaxTokens: researchMaxTokens,
		WebSearch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &Analysis{
		Analysis:    registry + "\n\n---\n\nWEB RESEARCH\n\n" + web + "\n",
		CompanyName: req.CompanyName,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Sources:     Sources{CompaniesHouse: d != nil, WebSearch: true},
	}
	if d != nil {
		out.CompanyName = d.Profile.CompanyName
		out.CompanyNumber = &d.Profile.CompanyNumber
		if d.Profile.CompanyStatus != "" {
			out.CompanyStatus = &d.Profile.CompanyStatus
		}
	}
	return out, nil
}

// DraftBlog writes, validates and internally links an SEO blog post,
// reusing a draft for the same company and notice type for DraftTTL.
func (s *researchService) DraftBlog(ctx context.Context, req Request) (*BlogDraft, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, ErrCompanyRequired
	}
	if s.generator == nil {
		return nil, ErrNoGenerator
	}

	key := common.GenerateKey(req.CompanyName, orDefault(req.NoticeType, "insolvency"))
	var cached BlogDraft
	if s.fromCache(key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	req = req.withDefaults()
	d, _ := s.dossier(ctx, req.CompanyName, true)

	var sic []string
	if d != nil && d.Profile != nil {
		sic = d.Profile.SICCodes
	}
	keywords := FallbackKeywords(req.CompanyName, req.NoticeType, sic)

	data := s.promptData(req, d)
	data.PrimaryKeyword = keywords.Primary.Keyword
	data.SearchVolume = keywords.Primary.Volume
	data.SecondaryKeywords = keywords.Secondary
	data.RelatedTerms = keywords.Related
	data.WordCount = blogWordCount

	prompt, err := render(blogTmpl, data)
	if err != nil {
		return nil, fmt.Errorf("render blog prompt: %w", err)
	}
	text, err := s.generator.Generate(ctx, GenerateRequest{
		Model:     s.models.Drafting,
		Prompt:    prompt,
		MaxTokens: blogMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no blog content generated")
	}

	validation := ValidateBlog(text)

	linked := linker.Result{Document: text}
	if s.linker != nil {
		linked, err = s.linker.Annotate(text, blogMaxLinks)
		if err != nil {
			return nil, fmt.Errorf("insert internal links: %w", err)
		}
	}

	draft := BlogDraft{
		Blog: linked.Document,
		Metadata: BlogMetadata{
			Title:           validation.Title,
			MetaDescription: validation.MetaDescription,
			WordCount:       validation.WordCount,
			PrimaryKeyword:  keywords.Primary.Keyword,
			SearchVolume:    keywords.Primary.Volume,
			KeywordDensity:  linker.KeywordDensity(linked.Document, keywords.Primary.Keyword),
			InternalLinks:   linked.LinksAdded,
			GeneratedAt:     s.now().UTC().Format(time.RFC3339),
			CompanyName:     req.CompanyName,
			Validation:      validation,
			Sources: Sources{
				CompaniesHouse:  d != nil,
				Financials:      d != nil && d.Financials != nil,
				KeywordResearch: keywords.Primary.Source,
			},
		},
	}
	if d != nil {
		draft.Metadata.CompanyName = d.Profile.CompanyName
		draft.Metadata.CompanyNumber = &d.Profile.CompanyNumber
	}

	s.logger.Info("blog drafted",
		zap.String("company", req.CompanyName),
		zap.Int("words", validation.WordCount),
		zap.Bool("valid", validation.Valid),
		zap.Int("links", linked.LinksAdded))
	s.toCache(key, draft)
	return &draft, nil
}

// DraftLinkedIn writes a short social post, cached apart from blogs.
func (s *researchService) DraftLinkedIn(ctx context.Context, req Request) (*LinkedInDraft, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, ErrCompanyRequired
	}
	if s.generator == nil {
		return nil, ErrNoGenerator
	}

	key := common.GenerateKey(req.CompanyName+"_linkedin", orDefault(req.NoticeType, "insolvency"))
	var cached LinkedInDraft
	if s.fromCache(key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	req = req.withDefaults()
	d, _ := s.dossier(ctx, req.CompanyName, true)

	prompt, err := render(linkedInTmpl, s.promptData(req, d))
	if err != nil {
		return nil, fmt.Errorf("render linkedin prompt: %w", err)
	}
	text, err := s.generator.Generate(ctx, GenerateRequest{
		Model:     s.models.Drafting,
		Prompt:    prompt,
		MaxTokens: postMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("no LinkedIn post content generated")
	}

	draft := LinkedInDraft{
		Post: text,
		Metadata: PostMetadata{
			CompanyName:    req.CompanyName,
			CharacterCount: len([]rune(text)),
			GeneratedAt:    s.now().UTC().Format(time.RFC3339),
			Sources: Sources{
				CompaniesHouse: d != nil,
				Financials:     d != nil && d.Financials != nil,
			},
		},
	}
	if d != nil {
		draft.Metadata.CompanyName = d.Profile.CompanyName
		draft.Metadata.CompanyNumber = &d.Profile.CompanyNumber
	}

	s.toCache(key, draft)
	return &draft, nil
}

func (s *researchService) promptData(req Request, d *model.Dossier) PromptData {
	data := PromptData{
		CompanyName:       req.CompanyName,
		CompanyNumber:     d.Number(),
		NoticeType:        req.NoticeType,
		NoticeDate:        req.NoticeDate,
		NoticeLink:        req.NoticeLink,
		CompanyContext:    CompanyContext(d),
		FinancialsContext: "Financial data not available",
		UpdatedOn:         s.now().Format(longDate),
	}
	if d != nil {
		data.FinancialsContext = FinancialsContext(d.FinancialData)
		data.Financials = d.Financials
	}
	return data
}

func (s *researchService) fromCache(key string, out any) bool {
	if s.drafts == nil {
		return false
	}
	raw, ok := s.drafts.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.drafts.Delete(key)
		return false
	}
	return true
}

func (s *researchService) toCache(key string, v any) {
	if s.drafts == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("failed to cache draft", zap.String("key", key), zap.Error(err))
		return
	}
	s.drafts.Set(key, raw, DraftTTL)
}
