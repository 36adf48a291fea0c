package fluid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SI to US engineering unit factors.
const (
	KgM3ToLbFt3    = 0.062428
	KJKgKToBtuLbF  = 0.238846
	PaSToLbFtH     = 2419.088
	WMKToBtuHFtF   = 0.577789
	DefaultNISTURL = "https://webbook.nist.gov/cgi/fluid.cgi"
)

// Client scrapes the NIST Chemistry WebBook isobaric property page at 1 atm.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Substances maps normalized names to WebBook compound IDs.
	Substances map[string]string
}

func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultNISTURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Substances: map[string]string{
			"water":    "C7732185",
			"methanol": "C67561",
			"ethanol":  "C64175",
		},
	}
}

// FahrenheitToKelvin converts a temperature for the WebBook query.
func FahrenheitToKelvin(f float64) float64 {
	return (f-32)*5/9 + 273.15
}

func (c *Client) Lookup(ctx context.Context, substance string, temperatureF float64) (p Properties, err error) {
	defer func() { Observe("nist", err) }()
	id, ok := c.Substances[Normalize(substance)]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q has no WebBook id", ErrUnknownSubstance, substance)
	}
	t := strconv.FormatFloat(FahrenheitToKelvin(temperatureF), 'f', 2, 64)
	q := url.Values{
		"ID":      {id},
		"Action":  {"Page"},
		"Type":    {"IsoBar"},
		"P":       {"1"},
		"TLow":    {t},
		"THigh":   {t},
		"TInc":    {"1"},
		"TUnit":   {"K"},
		"PUnit":   {"atm"},
		"DUnit":   {"kg/m3"},
		"HUnit":   {"kJ/kg"},
		"WUnit":   {"m/s"},
		"VisUnit": {"Pa*s"},
		"STUnit":  {"N/m"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Properties{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return Properties{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Properties{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}
	return ParseIsobarPage(res.Body)
}

// Column headers on the isobaric page, matched by prefix.
var nistColumns = [...]string{"Density", "Cp", "Viscosity", "Therm. Cond."}

// ParseIsobarPage reads the first data row of a WebBook isobaric table and
// converts it to US engineering units. Columns are located by header text.
func ParseIsobarPage(r io.Reader) (Properties, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Properties{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	table := findTable(doc)
	if table == nil {
		return Properties{}, fmt.Errorf("%w: no property table", ErrMalformed)
	}
	var header, row []string
	for _, tr := range elements(table, "tr") {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		row = cells
		break
	}
	if row == nil {
		return Properties{}, fmt.Errorf("%w: property table has no data row", ErrMalformed)
	}

	var vals [len(nistColumns)]float64
	for i, name := range nistColumns {
		idx := -1
		for j, h := range header {
			if strings.HasPrefix(h, name) {
				idx = j
				break
			}
		}
		if idx < 0 || idx >= len(row) {
			return Properties{}, fmt.Errorf("%w: column %q missing", ErrMalformed, name)
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return Properties{}, fmt.Errorf("%w: column %q: %v", ErrMalformed, name, err)
		}
		vals[i] = v
	}
	p := Properties{
		DensityLbFt3:       vals[0] * KgM3ToLbFt3,
		SpecificHeatBtuLbF: vals[1] * KJKgKToBtuLbF,
		ViscosityLbFtH:     vals[2] * PaSToLbFtH,
		ConductivityBtuHFt: vals[3] * WMKToBtuHFtF,
	}
	if err := p.Validate(); err != nil {
		return Properties{}, errors.Join(ErrMalformed, err)
	}
	return p, nil
}

func findTable(n *html.Node) *html.Node {
	for _, t := range elements(n, "table") {
		for _, th := range elements(t, "th") {
			if strings.HasPrefix(text(th), "Density") {
				return t
			}
		}
	}
	return nil
}

func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, text(c))
		}
	}
	return cells
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Chain tries providers in order and returns the first answer. Only unknown
// substances and out-of-range temperatures fall through to the next provider;
// an unavailable or malformed source is returned as is.
type Chain []Provider

func (ch Chain) Lookup(ctx context.Context, substance string, temperatureF float64) (Properties, error) {
	var errs []error
	for _, p := range ch {
		props, err := p.Lookup(ctx, substance, temperatureF)
		if err == nil {
			return props, nil
		}
		if !errors.Is(err, ErrUnknownSubstance) && !errors.Is(err, ErrOutOfRange) {
			return Properties{}, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Properties{}, fmt.Errorf("%w: no providers configured", ErrUnavailable)
	}
	return Properties{}, errors.Join(errs...)
}
