package chromedp_browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/utils"
)

type element struct {
	s    *Session
	node *cdp.Node
	base *url.URL
}

func (e *element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.node.Attribute(name)
	if !ok {
		return "", false, nil
	}
	return resolveAttribute(e.base, name, v)
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.s.run(ctx, e.s.opts.ElementTimeout, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return text, nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.s.run(ctx, e.s.opts.ElementTimeout, chromedp.Click(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *element) First(ctx context.Context, selector string) (repository.Element, error) {
	return e.child(ctx, selector)
}

func (e *element) LastChild(ctx context.Context) (repository.Element, error) {
	return e.child(ctx, ":scope > :last-child")
}

// child queries below this element without waiting; the page is already loaded.
func (e *element) child(ctx context.Context, selector string) (repository.Element, error) {
	var nodes []*cdp.Node
	err := e.s.run(ctx, e.s.opts.ElementTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
	}
	return &element{s: e.s, node: nodes[0], base: e.base}, nil
}

// resolveAttribute makes href and src absolute the way the DOM properties would be.
func resolveAttribute(base *url.URL, name, value string) (string, bool, error) {
	if (name != "href" && name != "src") || value == "" {
		return value, true, nil
	}
	abs, err := utils.ToAbsoluteURL(base, value)
	if err != nil {
		return "", true, fmt.Errorf("%w: resolve %s %q: %w", repository.ErrInvalidURL, name, value, err)
	}
	return abs, true, nil
}
