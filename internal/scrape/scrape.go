// Package scrape extracts cart items, order history and the signed-in user
// from shopping pages.
package scrape

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/iksnae/shopsavvy/internal"
)

const (
	cartItemSelector  = ".sc-list-item-content"
	cartTitleSelector = ".sc-product-title"
	cartPriceSelector = ".sc-price, .a-price-whole"

	orderItemSelector  = ".order-item-selector"
	orderTitleSelector = ".title-selector"
	orderPriceSelector = ".price-selector"

	accountSelector = "#nav-link-accountList-nav-line-1"
	greetingPrefix  = "Hello,"
)

// Page is everything extracted from one document
type Page struct {
	Items    []internal.CartItem
	Orders   []internal.Order
	UserName string
	LoggedIn bool
}

// Parse reads an HTML document and extracts the cart, orders and account name
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:  cartItems(doc.Selection),
		Orders: orders(doc.Selection),
	}
	page.UserName, page.LoggedIn = account(doc.Selection)
	return page, nil
}

// ScrapeCartItems returns the named cart items in html
func ScrapeCartItems(html string) ([]internal.CartItem, error) {
	page, err := Parse(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ScrapeOrderHistory returns the orders in html that have both a title and a price
func ScrapeOrderHistory(html string) ([]internal.Order, error) {
	page, err := Parse(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return page.Orders, nil
}

func cartItems(root *goquery.Selection) []internal.CartItem {
	var items []internal.CartItem
	root.Find(cartItemSelector).Each(func(i int, s *goquery.Selection) {
		name := firstText(s, cartTitleSelector)
		if name == "" {
			internal.LogDebug("Skipping cart entry %d without a title", i)
			return
		}
		items = append(items, internal.CartItem{Name: name, Price: firstText(s, cartPriceSelector)})
	})
	return items
}

func orders(root *goquery.Selection) []internal.Order {
	var out []internal.Order
	root.Find(orderItemSelector).Each(func(_ int, s *goquery.Selection) {
		title := firstText(s, orderTitleSelector)
		price := firstText(s, orderPriceSelector)
		if title != "" && price != "" {
			out = append(out, internal.Order{Title: title, Price: price})
		}
	})
	return out
}

// account returns the greeted name. A header without the greeting means
// the visitor is not signed in.
func account(root *goquery.Selection) (string, bool) {
	text := root.Find(accountSelector).First().Text()
	if !strings.Contains(text, greetingPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.Replace(text, greetingPrefix, "", 1))
	if strings.EqualFold(name, "sign in") {
		return "", false
	}
	return name, true
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
