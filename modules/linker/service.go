package linker

import "go.uber.org/zap"

// LinkSource supplies the link database.
type LinkSource interface {
	Links() []Link
}

// LinkerService annotates generated documents with internal links.
type LinkerService interface {
	Annotate(markdown string, maxLinks int) (Result, error)
}

type linkerService struct {
	source LinkSource
	logger *zap.Logger
}

// NewLinkerService constructs a LinkerService over source.
func NewLinkerService(source LinkSource, logger *zap.Logger) LinkerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkerService{source: source, logger: logger}
}

func (s *linkerService) Annotate(markdown string, maxLinks int) (Result, error) {
	var links []Link
	if s.source != nil {
		links = s.source.Links()
	}
	res, err := InsertLinks(markdown, links, maxLinks)
	if err != nil {
		return Result{}, err
	}
	s.logger.Debug("internal links inserted",
		zap.Int("database", len(links)),
		zap.Int("selected", len(res.Considered)),
		zap.Int("added", res.LinksAdded))
	return res, nil
}
