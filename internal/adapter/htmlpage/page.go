// Package htmlpage serves a saved HTML document through the read-only page interface,
// so a course page can be inspected without a browser.
package htmlpage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/utils"
)

// Document is a parsed HTML page.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse reads an HTML document. URL attributes are resolved against baseURL when it is
// not empty.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
	}
	return &Document{doc: doc, base: base}, nil
}

func (d *Document) Find(ctx context.Context, selector string) (repository.Element, error) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
	}
	return &element{sel: sel, base: d.base}, nil
}

func (d *Document) FindAll(ctx context.Context, selector string) ([]repository.Element, error) {
	var out []repository.Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{sel: s, base: d.base})
	})
	return out, nil
}

type element struct {
	sel  *goquery.Selection
	base *url.URL
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", false, nil
	}
	if (name == "href" || name == "src") && v != "" {
		abs, err := utils.ToAbsoluteURL(e.base, v)
		if err != nil {
			return "", true, fmt.Errorf("%w: resolve %s %q: %w", repository.ErrInvalidURL, name, v, err)
		}
		return abs, true, nil
	}
	return v, true, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *element) Click(ctx context.Context) error {
	return repository.ErrReadOnlyPage
}

func (e *element) First(ctx context.Context, selector string) (repository.Element, error) {
	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
	}
	return &element{sel: sel, base: e.base}, nil
}

func (e *element) LastChild(ctx context.Context) (repository.Element, error) {
	sel := e.sel.Children().Last()
	if sel.Length() == 0 {
		return nil, repository.ErrElementNotFound
	}
	return &element{sel: sel, base: e.base}, nil
}
