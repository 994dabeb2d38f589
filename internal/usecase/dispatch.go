package usecase

import (
	"context"
	"fmt"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/metrics"
	"go.uber.org/zap"
)

// Dispatcher opens every link in its own tab so the browser downloads them concurrently.
type Dispatcher struct {
	session repository.BrowserSession
	logger  *zap.Logger
	onOpen  func(entity.ResourceLink)
}

// NewDispatcher creates a dispatcher over session.
func NewDispatcher(session repository.BrowserSession, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		session: session,
		logger:  logger.Named("dispatcher"),
	}
}

// Dispatch opens the links one after another in order. It stops at the first failed
// navigation and returns the number of tabs opened before it.
func (d *Dispatcher) Dispatch(ctx context.Context, links []entity.ResourceLink) (int, error) {
	for i, link := range links {
		if err := d.session.OpenTab(ctx, link.Href); err != nil {
			metrics.TabsDispatchedTotal.WithLabelValues("failure").Inc()
			d.logger.Error("Failed to open download tab", zap.String("url", link.Href), zap.Error(err))
			return i, fmt.Errorf("open %s: %w", link.Href, err)
		}
		metrics.TabsDispatchedTotal.WithLabelValues("success").Inc()
		d.logger.Info("Opened download tab", zap.String("url", link.Href), zap.Int("position", i+1), zap.Int("total", len(links)))
		if d.onOpen != nil {
			d.onOpen(link)
		}
	}
	return len(links), nil
}
