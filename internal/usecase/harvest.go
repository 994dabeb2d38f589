package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/metrics"
	"go.uber.org/zap"
)

// LinkHarvester collects the downloadable resource links of a loaded course page.
type LinkHarvester struct {
	page       repository.PageQuerier
	classifier *Classifier
	linkSel    string
	iconSel    string
	logger     *zap.Logger
}

// NewLinkHarvester creates a harvester reading from page.
func NewLinkHarvester(page repository.PageQuerier, classifier *Classifier, sel Selectors, logger *zap.Logger) *LinkHarvester {
	return &LinkHarvester{
		page:       page,
		classifier: classifier,
		linkSel:    sel.ResourceLink,
		iconSel:    sel.Icon,
		logger:     logger.Named("harvester"),
	}
}

// Harvest returns a single-use sequence of downloadable links in page order. Anchors with
// no icon, an unknown icon or no href are skipped. A session failure is yielded once and
// ends the sequence.
func (h *LinkHarvester) Harvest(ctx context.Context) iter.Seq2[entity.ResourceLink, error] {
	var used atomic.Bool
	return func(yield func(entity.ResourceLink, error) bool) {
		if used.Swap(true) {
			yield(entity.ResourceLink{}, ErrHarvestConsumed)
			return
		}

		anchors, err := h.page.FindAll(ctx, h.linkSel)
		if err != nil {
			yield(entity.ResourceLink{}, fmt.Errorf("resource links %q: %w", h.linkSel, err))
			return
		}
		h.logger.Debug("Enumerated resource anchors", zap.Int("count", len(anchors)))

		for i, anchor := range anchors {
			link, ok, err := h.inspect(ctx, anchor)
			if err != nil {
				yield(entity.ResourceLink{}, fmt.Errorf("anchor %d: %w", i, err))
				return
			}
			if !ok {
				continue
			}
			if !yield(link, nil) {
				return
			}
		}
	}
}

func (h *LinkHarvester) inspect(ctx context.Context, anchor repository.Element) (entity.ResourceLink, bool, error) {
	icon, err := anchor.First(ctx, h.iconSel)
	if errors.Is(err, repository.ErrElementNotFound) {
		metrics.LinksClassifiedTotal.WithLabelValues("no_icon").Inc()
		return entity.ResourceLink{}, false, nil
	}
	if err != nil {
		return entity.ResourceLink{}, false, err
	}

	src, _, err := icon.Attribute(ctx, "src")
	if errors.Is(err, repository.ErrInvalidURL) {
		metrics.LinksClassifiedTotal.WithLabelValues("no_icon").Inc()
		return entity.ResourceLink{}, false, nil
	}
	if err != nil {
		return entity.ResourceLink{}, false, err
	}
	sig := entity.IconSignature(src)
	if !h.classifier.Classify(sig) {
		metrics.LinksClassifiedTotal.WithLabelValues("skipped").Inc()
		return entity.ResourceLink{}, false, nil
	}

	href, present, err := anchor.Attribute(ctx, "href")
	if errors.Is(err, repository.ErrInvalidURL) {
		metrics.LinksClassifiedTotal.WithLabelValues("no_href").Inc()
		return entity.ResourceLink{}, false, nil
	}
	if err != nil {
		return entity.ResourceLink{}, false, err
	}
	if !present || href == "" {
		metrics.LinksClassifiedTotal.WithLabelValues("no_href").Inc()
		return entity.ResourceLink{}, false, nil
	}

	metrics.LinksClassifiedTotal.WithLabelValues("downloadable").Inc()
	return entity.ResourceLink{Href: href, Icon: sig}, true, nil
}

// Collect drains seq, stopping at the first error.
func Collect(seq iter.Seq2[entity.ResourceLink, error]) ([]entity.ResourceLink, error) {
	var links []entity.ResourceLink
	for link, err := range seq {
		if err != nil {
			return links, err
		}
		links = append(links, link)
	}
	return links, nil
}
