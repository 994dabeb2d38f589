package repository

import (
	"context"
	"errors"
)

var (
	ErrElementNotFound  = errors.New("element not found")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrReadOnlyPage     = errors.New("page does not accept input")
	ErrInvalidURL       = errors.New("attribute is not a valid URL")
)

// Element is a handle to a DOM element owned by a session. Handles are only valid
// until the owning page navigates away.
type Element interface {
	// Attribute reads an attribute of the element. URL-valued attributes (href, src)
	// are resolved against the page location and fail with ErrInvalidURL when they do not
	// parse. present is false when the attribute is absent.
	Attribute(ctx context.Context, name string) (value string, present bool, err error)
	// Text returns the rendered text of the element.
	Text(ctx context.Context) (string, error)
	// Click activates the element.
	Click(ctx context.Context) error
	// First returns the first descendant matching selector, or ErrElementNotFound.
	First(ctx context.Context, selector string) (Element, error)
	// LastChild returns the last child element, or ErrElementNotFound.
	LastChild(ctx context.Context) (Element, error)
}

// PageQuerier enumerates elements of the currently loaded page.
type PageQuerier interface {
	// Find returns the first element matching selector, or ErrElementNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns every element matching selector in document order. No match is
	// not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

// BrowserSession is a remote-controlled browser with one primary tab.
type BrowserSession interface {
	PageQuerier
	// Navigate loads url in the primary tab.
	Navigate(ctx context.Context, url string) error
	// Perform runs an input sequence as a single user gesture.
	Perform(ctx context.Context, actions []InputAction) error
	// OpenTab opens url in a new tab and returns once the browser accepted the navigation.
	OpenTab(ctx context.Context, url string) error
	// Close tears down the browser and its driver process.
	Close() error
}
