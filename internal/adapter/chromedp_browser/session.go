package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/user/course-harvester/internal/repository"
	"go.uber.org/zap"
)

// Chrome aborts the navigation of a tab whose response becomes a download.
const downloadAborted = "net::ERR_ABORTED"

// Options configures the browser launched for a session.
type Options struct {
	Headless       bool
	ExecPath       string
	RemoteURL      string
	UserAgent      string
	DownloadDir    string
	ElementTimeout time.Duration
}

// Session is a BrowserSession backed by a Chrome instance driven over the devtools protocol.
type Session struct {
	opts   Options
	logger *zap.Logger

	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	mu   sync.Mutex
	tabs []context.CancelFunc
}

var _ repository.BrowserSession = (*Session)(nil)

// NewSession starts (or attaches to) a browser and routes its downloads to opts.DownloadDir.
func NewSession(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	logger = logger.Named("browser")
	downloadDir, err := filepath.Abs(opts.DownloadDir)
	if err != nil {
		return nil, fmt.Errorf("resolve download directory: %w", err)
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", opts.Headless),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if opts.ExecPath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
		}
		if opts.UserAgent != "" {
			execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	sugar := logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	// The first Run starts the browser, so it must use the long-lived tab context.
	err = chromedp.Run(tabCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Info("Browser started",
		zap.String("download_dir", downloadDir),
		zap.Bool("headless", opts.Headless),
		zap.Bool("remote", opts.RemoteURL != ""),
	)
	return &Session{
		opts:        opts,
		logger:      logger,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// run executes actions in the primary tab. A positive timeout bounds the actions; ctx
// cancellation aborts them without closing the tab.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tabCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	s.logger.Info("Navigating", zap.String("url", rawURL))
	if err := s.run(ctx, 0, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, rawURL, err)
	}
	return nil
}

func (s *Session) location(ctx context.Context) (*url.URL, error) {
	var loc string
	if err := s.run(ctx, s.opts.ElementTimeout, chromedp.Location(&loc)); err != nil {
		return nil, fmt.Errorf("read location: %w", err)
	}
	return url.Parse(loc)
}

func (s *Session) Find(ctx context.Context, selector string) (repository.Element, error) {
	base, err := s.location(ctx)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err = s.run(ctx, s.opts.ElementTimeout, chromedp.Nodes(selector, &nodes, chromedp.ByQuery))
	if isLookupTimeout(ctx, err) || (err == nil && len(nodes) == 0) {
		return nil, fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	return &element{s: s, node: nodes[0], base: base}, nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]repository.Element, error) {
	base, err := s.location(ctx)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err = s.run(ctx, s.opts.ElementTimeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll))
	if isLookupTimeout(ctx, err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query all %s: %w", selector, err)
	}
	out := make([]repository.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &element{s: s, node: n, base: base}
	}
	return out, nil
}

func (s *Session) Perform(ctx context.Context, actions []repository.InputAction) error {
	tasks := make(chromedp.Tasks, 0, len(actions))
	for i, a := range actions {
		el, ok := a.Target.(*element)
		if !ok {
			return fmt.Errorf("action %d: target does not belong to this session", i)
		}
		ids := []cdp.NodeID{el.node.NodeID}
		switch a.Kind {
		case repository.ActionType:
			tasks = append(tasks, chromedp.SendKeys(ids, a.Text, chromedp.ByNodeID))
		case repository.ActionClick:
			tasks = append(tasks, chromedp.Click(ids, chromedp.ByNodeID))
		default:
			return fmt.Errorf("action %d: unsupported kind %s", i, a.Kind)
		}
	}
	if err := s.run(ctx, s.opts.ElementTimeout, tasks); err != nil {
		return fmt.Errorf("perform input sequence: %w", err)
	}
	return nil
}

// OpenTab navigates a new tab to rawURL. The tab stays open until Close so an inline
// response keeps loading; a navigation aborted by a download counts as accepted.
func (s *Session) OpenTab(ctx context.Context, rawURL string) error {
	tabCtx, cancel := chromedp.NewContext(s.tabCtx)
	s.mu.Lock()
	s.tabs = append(s.tabs, cancel)
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tabCtx, chromedp.Navigate(rawURL))
	if err != nil && strings.Contains(err.Error(), downloadAborted) {
		s.logger.Debug("Navigation turned into a download", zap.String("url", rawURL))
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, rawURL, err)
	}
	return nil
}

// Close closes every tab and stops the browser.
func (s *Session) Close() error {
	s.mu.Lock()
	tabs := s.tabs
	s.tabs = nil
	s.mu.Unlock()
	for _, cancel := range tabs {
		cancel()
	}

	err := chromedp.Cancel(s.tabCtx)
	s.tabCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	s.logger.Info("Browser closed")
	return nil
}

// isLookupTimeout reports whether err is the element timeout expiring rather than the
// caller giving up.
func isLookupTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}
