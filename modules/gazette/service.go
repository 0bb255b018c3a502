package gazette

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

const (
	// ListingTTL is how long a fetched listing is served from cache.
	ListingTTL = 5 * time.Minute
	// MaxPages caps the feed at 1000 notices.
	MaxPages = 10
	// LookbackDays is the width of the publish date window.
	LookbackDays = 7

	listingKey = "notices:latest"
)

var allowedPrefixes = []string{"241", "243", "244", "245"}

// ListingCache is the cache behind ListNotices. *common.Cache satisfies it.
type ListingCache interface {
	common.CacheRepository[model.NoticeListing]
	Age(key string) (time.Duration, bool)
}

// GazetteService serves the filtered insolvency notice listing.
type GazetteService interface {
	ListNotices(ctx context.Context, forceRefresh bool) (*model.NoticeListing, error)
}

type gazetteService struct {
	client GazetteClient
	cache  ListingCache
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	lastGood *model.NoticeListing
	lastAt   time.Time
}

// NewGazetteService constructs a GazetteService.
func NewGazetteService(client GazetteClient, cache ListingCache, logger *zap.Logger) GazetteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gazetteService{
		client: client,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// ListNotices returns the last week of administration, liquidation and
// winding-up notices, newest first. A cached listing younger than
// ListingTTL is reused unless forceRefresh is set. When the upstream fetch
// fails and an earlier listing exists, that listing is returned marked
// stale instead of an error.
func (s *gazetteService) ListNotices(ctx context.Context, forceRefresh bool) (*model.NoticeListing, error) {
	if !forceRefresh {
		if listing, ok := s.cache.Get(listingKey); ok {
			age, _ := s.cache.Age(listingKey)
			listing.Cached = true
			listing.CacheAge = seconds(age)
			listing.NextRefresh = seconds(ListingTTL - age)
			return &listing, nil
		}
	}

	listing, err := s.fetchFresh(ctx)
	if err != nil {
		s.logger.Error("failed to fetch gazette notices", zap.Error(err))

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastGood == nil {
			return nil, err
		}
		stale := *s.lastGood
		stale.Cached = true
		stale.Stale = true
		stale.CacheAge = seconds(s.now().Sub(s.lastAt))
		stale.Error = err.Error()
		return &stale, nil
	}

	s.cache.Set(listingKey, *listing, ListingTTL)
	s.mu.Lock()
	s.lastGood = listing
	s.lastAt = s.now()
	s.mu.Unlock()

	out := *listing
	out.NextRefresh = seconds(ListingTTL)
	return &out, nil
}

func (s *gazetteService) fetchFresh(ctx context.Context) (*model.NoticeListing, error) {
	now := s.now().UTC()
	start := now.AddDate(0, 0, -LookbackDays).Format(time.DateOnly)
	end := now.Format(time.DateOnly)

	first, err := s.client.FetchPage(ctx, start, end, 1)
	if err != nil {
		return nil, err
	}
	total, _ := strconv.Atoi(strings.TrimSpace(first.Total))
	pages := min((total+PageSize-1)/PageSize, MaxPages)

	rest := make([]*model.GazetteFeed, max(pages-1, 0))
	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			feed, err := s.client.FetchPage(gctx, start, end, page)
			if err != nil {
				return err
			}
			rest[page-2] = feed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := first.Entries
	for _, feed := range rest {
		entries = append(entries, feed.Entries...)
	}

	notices := make([]model.Notice, 0, len(entries))
	for _, entry := range entries {
		if !IsAllowedNotice(string(entry.NoticeCode)) {
			continue
		}
		notices = append(notices, s.toNotice(entry))
	}
	sortByPublished(notices)

	s.logger.Info("fetched gazette notices",
		zap.Int("pages", max(pages, 1)),
		zap.Int("entries", len(entries)),
		zap.Int("kept", len(notices)))

	return &model.NoticeListing{
		Notices:        notices,
		Fetched:        now.Format(time.RFC3339),
		Total:          len(notices),
		DateRange:      model.DateRange{Start: start, End: end},
		TotalInGazette: total,
	}, nil
}

func (s *gazetteService) toNotice(entry model.GazetteEntry) model.Notice {
	code := string(entry.NoticeCode)
	return model.Notice{
		ID:         entry.ID,
		Title:      entry.Title,
		Published:  entry.Published,
		Updated:    entry.Updated,
		NoticeCode: code,
		NoticeType: NoticeType(code),
		Category:   entry.Category.Term,
		Link:       s.pageLink(entry),
	}
}

// pageLink picks the human-readable notice page, which is the link with
// neither a rel nor a type attribute.
func (s *gazetteService) pageLink(entry model.GazetteEntry) string {
	for _, l := range entry.Links {
		if l.Rel == "" && l.Type == "" && l.Href != "" {
			return l.Href
		}
	}
	id := entry.ID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return fmt.Sprintf("%s/notice/%s", strings.TrimRight(s.client.BaseURL(), "/"), id)
}

// IsAllowedNotice reports whether code belongs to one of the administration,
// winding-up or liquidation notice families.
func IsAllowedNotice(code string) bool {
	if code == "" {
		return false
	}
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// NoticeType maps a notice code to a display label.
func NoticeType(code string) string {
	switch {
	case code == "":
		return "Notice"
	case strings.HasPrefix(code, "245"):
		return "Winding Up Petition"
	case strings.HasPrefix(code, "244"):
		return "Liquidation (CVL)"
	case strings.HasPrefix(code, "243"):
		return "Winding Up / Liquidation"
	case strings.HasPrefix(code, "241"):
		return "Administration"
	default:
		return "Insolvency"
	}
}

func sortByPublished(notices []model.Notice) {
	parsed := make(map[string]time.Time, len(notices))
	for _, n := range notices {
		if t, err := time.Parse(time.RFC3339, n.Published); err == nil {
			parsed[n.Published] = t
		}
	}
	sort.SliceStable(notices, func(i, j int) bool {
		return parsed[notices[i].Published].After(parsed[notices[j].Published])
	})
}

func seconds(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}
