package companieshouse

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

// FinancialsTTL is how long a financials lookup is reused.
const FinancialsTTL = 24 * time.Hour

var companySuffix = regexp.MustCompile(`(?i)\s*(LIMITED|LTD|PLC|LLP)\.?\s*$`)

// CompaniesHouseService answers company questions on top of the registry.
type CompaniesHouseService interface {
	Configured() bool
	SearchCompany(ctx context.Context, name string) (*model.CompanySearchItem, error)
	Profile(ctx context.Context, companyNumber string) (*model.CompanyProfile, error)
	Officers(ctx context.Context, companyNumber string) ([]model.Officer, error)
	PSCs(ctx context.Context, companyNumber string) ([]model.PSC, error)
	AccountsFilings(ctx context.Context, companyNumber string) ([]model.Filing, error)
	LatestFinancials(ctx context.Context, companyNumber string) (*model.FinancialData, error)
	Dossier(ctx context.Context, name string, withFinancials bool) (*model.Dossier, error)
	LookupFinancials(ctx context.Context, name string) (*model.FinancialsLookup, error)
}

type companiesHouseService struct {
	client CompaniesHouseClient
	cache  common.CacheRepository[model.FinancialsLookup]
	logger *zap.Logger
}

// NewCompaniesHouseService constructs a CompaniesHouseService. cache holds
// financials lookups.
func NewCompaniesHouseService(client CompaniesHouseClient, cache common.CacheRepository[model.FinancialsLookup], logger *zap.Logger) CompaniesHouseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &companiesHouseService{client: client, cache: cache, logger: logger}
}

func (s *companiesHouseService) Configured() bool {
	return s.client.Configured()
}

// SearchCompany finds the registry entry that best matches name: an exact
// title match, else the first company in liquidation or active, else the
// first result. It returns nil without error when nothing matches.
func (s *companiesHouseService) SearchCompany(ctx context.Context, name string) (*model.CompanySearchItem, error) {
	term := strings.TrimSpace(companySuffix.ReplaceAllString(name, ""))

	var result model.CompanySearchResult
	err := s.client.GetJSON(ctx, "/search/companies", &result, map[string]string{
		"q":              term,
		"items_per_page": "5",
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	return bestMatch(result.Items, name), nil
}

func bestMatch(items []model.CompanySearchItem, name string) *model.CompanySearchItem {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if strings.EqualFold(items[i].Title, name) {
			return &items[i]
		}
	}
	for i := range items {
		if items[i].CompanyStatus == "liquidation" || items[i].CompanyStatus == "active" {
			return &items[i]
		}
	}
	return &items[0]
}

func (s *companiesHouseService) Profile(ctx context.Context, companyNumber string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	err := s.client.GetJSON(ctx, "/company/"+url.PathEscape(companyNumber), &profile, nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *companiesHouseService) Officers(ctx context.Context, companyNumber string) ([]model.Officer, error) {
	var list model.OfficerList
	if err := s.getList(ctx, "/company/"+url.PathEscape(companyNumber)+"/officers", &list, "50", nil); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (s *companiesHouseService) PSCs(ctx context.Context, companyNumber string) ([]model.PSC, error) {
	var list model.PSCList
	if err := s.getList(ctx, "/company/"+url.PathEscape(companyNumber)+"/persons-with-significant-control", &list, "50", nil); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// AccountsFilings returns the most recent accounts filings, newest first.
func (s *companiesHouseService) AccountsFilings(ctx context.Context, companyNumber string) ([]model.Filing, error) {
	var history model.FilingHistory
	extra := map[string]string{"category": "accounts"}
	if err := s.getList(ctx, "/company/"+url.PathEscape(companyNumber)+"/filing-history", &history, "5", extra); err != nil {
		return nil, err
	}
	return history.Items, nil
}

// getList treats a 404 as an empty list.
func (s *companiesHouseService) getList(ctx context.Context, endpoint string, out any, pageSize string, extra map[string]string) error {
	params := map[string]string{"items_per_page": pageSize}
	for k, v := range extra {
		params[k] = v
	}
	err := s.client.GetJSON(ctx, endpoint, out, params)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// LatestFinancials parses the newest accounts filing. It returns nil when
// the company has filed no accounts. A document that cannot be fetched or
// parsed yields FinancialData with nil Financials.
func (s *companiesHouseService) LatestFinancials(ctx context.Context, companyNumber string) (*model.FinancialData, error) {
	filings, err := s.AccountsFilings(ctx, companyNumber)
	if err != nil {
		return nil, err
	}
	if len(filings) == 0 {
		return nil, nil
	}

	latest := filings[0]
	data := &model.FinancialData{
		AccountsDate: latest.Date,
		AccountsType: latest.Description,
	}

	doc, err := s.client.GetDocument(ctx, companyNumber, latest.TransactionID)
	if err != nil {
		s.logger.Warn("failed to fetch accounts document",
			zap.String("company", companyNumber),
			zap.String("transaction", latest.TransactionID),
			zap.Error(err))
		return data, nil
	}

	fin, err := ParseAccounts(doc)
	if err != nil {
		s.logger.Warn("failed to parse accounts document",
			zap.String("company", companyNumber),
			zap.Error(err))
		return data, nil
	}
	data.Financials = fin
	return data, nil
}

// Dossier gathers the profile, officers and PSCs (and optionally the latest
// financials) for the company best matching name. It returns nil when no
// company matches.
func (s *companiesHouseService) Dossier(ctx context.Context, name string, withFinancials bool) (*model.Dossier, error) {
	match, err := s.SearchCompany(ctx, name)
	if err != nil {
		return nil, err
	}
	if match == nil || match.CompanyNumber == "" {
		return nil, nil
	}
	number := match.CompanyNumber

	var dossier model.Dossier
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Profile(gctx, number)
		dossier.Profile = p
		return err
	})
	g.Go(func() error {
		o, err := s.Officers(gctx, number)
		dossier.Officers = o
		return err
	})
	g.Go(func() error {
		p, err := s.PSCs(gctx, number)
		dossier.PSCs = p
		return err
	})
	if withFinancials {
		g.Go(func() error {
			fd, err := s.LatestFinancials(gctx, number)
			if err != nil {
				// financials are best effort
				s.logger.Warn("failed to load financials", zap.String("company", number), zap.Error(err))
				return nil
			}
			if fd != nil {
				dossier.FinancialData = *fd
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dossier for %s: %w", number, err)
	}

	if dossier.Profile == nil {
		dossier.Profile = &model.CompanyProfile{
			CompanyName:   match.Title,
			CompanyNumber: number,
			CompanyStatus: match.CompanyStatus,
		}
	}
	return &dossier, nil
}

// LookupFinancials is the financials endpoint: search, latest accounts and
// parse, cached per company name for FinancialsTTL.
func (s *companiesHouseService) LookupFinancials(ctx context.Context, name string) (*model.FinancialsLookup, error) {
	if !s.Configured() {
		return nil, ErrNoAPIKey
	}

	key := common.GenerateKey("financials", name)
	if cached, ok := s.cache.Get(key); ok {
		cached.Cached = true
		return &cached, nil
	}

	match, err := s.SearchCompany(ctx, name)
	if err != nil {
		return nil, err
	}
	if match == nil || match.CompanyNumber == "" {
		return &model.FinancialsLookup{
			Found:       false,
			CompanyName: name,
			Message:     "Company not found",
		}, nil
	}

	data, err := s.LatestFinancials(ctx, match.CompanyNumber)
	if err != nil {
		return nil, err
	}

	result := model.FinancialsLookup{
		Found:         true,
		CompanyName:   match.Title,
		CompanyNumber: match.CompanyNumber,
	}
	switch {
	case data == nil:
		result.Message = "No accounts filed"
	case data.Financials == nil:
		result.AccountsDate = data.AccountsDate
		result.AccountsType = data.AccountsType
		result.Message = "Could not parse accounts"
	default:
		result.AccountsDate = data.AccountsDate
		result.AccountsType = data.AccountsType
		result.Financials = data.Financials
		result.Message = "Financials extracted"
	}

	s.cache.Set(key, result, FinancialsTTL)
	return &result, nil
}
