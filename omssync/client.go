package omssync

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type o1Client struct {
	baseURL  string
	user     string
	pass     string
	pageSize int
	http     *http.Client
	limiter  <-chan time.Time
}

func newO1Client(creds O1Credentials) (*o1Client, error) {
	if strings.TrimSpace(creds.APIURL) == "" {
		return nil, errors.New("o1 api url is empty")
	}
	pageSize := 100
	if v := strings.TrimSpace(os.Getenv("O1_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("O1_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &o1Client{
		baseURL:  strings.TrimRight(creds.APIURL, "/"),
		user:     creds.APIUser,
		pass:     creds.APIPass,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  time.Tick(interval),
	}, nil
}

type CatalogProduct struct {
	ExternalId string
	Status     string
	Name       string
	Type       string
}

// FetchProducts pulls every product page. A page shorter than the requested
// count is the last one.
func (c *o1Client) FetchProducts(ctx context.Context) ([]CatalogProduct, error) {
	var all []CatalogProduct
	startIndex := 0
	for {
		page, err := c.fetchPage(ctx, startIndex, c.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
		startIndex += c.pageSize
	}
}

func (c *o1Client) fetchPage(ctx context.Context, startIndex int, count int) ([]CatalogProduct, error) {
	<-c.limiter
	endpoint := fmt.Sprintf("%s/operativeone/restapi/products/?startindex=%d&count=%d", c.baseURL, startIndex, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.pass)
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("version", "v2")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("o1 api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return parseProductsXML(body)
}

// parseProductsXML walks the document for <product> elements regardless of
// nesting; the feed mixes v1/v2 namespaces on the child fields, which the
// local-name matching below ignores.
func parseProductsXML(body []byte) ([]CatalogProduct, error) {
	type productXML struct {
		ID          string `xml:"id"`
		Name        string `xml:"name"`
		Status      string `xml:"status"`
		ProductType string `xml:"productType"`
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	var products []CatalogProduct
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return products, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse products xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "product" {
			continue
		}
		var p productXML
		if err := dec.DecodeElement(&p, &se); err != nil {
			return nil, fmt.Errorf("parse product element: %w", err)
		}
		products = append(products, CatalogProduct{
			ExternalId: orNA(p.ID),
			Status:     orNA(p.Status),
			Name:       orNA(p.Name),
			Type:       orNA(p.ProductType),
		})
	}
}

func orNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
