// Package extract reads the latest published version and package size from a
// download page.
package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	attrVersion  = "data-dt-version"
	attrFileSize = "data-dt-filesize"

	versionSelector  = ".version-box .version-name"
	sizeDescSelector = "ul.dev-partnership-head-info li div.desc"
	sizeHeadSelector = "div.head"
	sizeToken        = "Size"
)

// Record is one observed release.
type Record struct {
	Version string
	SizeMB  float64
}

func (r Record) String() string {
	return fmt.Sprintf("%s (%.1f MB)", r.Version, r.SizeMB)
}

// ParseError is returned when no strategy produced a complete Record.
type ParseError struct {
	Tried int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse latest version or file size (%d strategies tried)", e.Tried)
}

// Strategy looks for a Record in doc. ok is false unless both the version and
// the size were found.
type Strategy func(doc *goquery.Document) (r Record, ok bool)

// Extractor tries its strategies in order; the first complete result wins.
type Extractor struct {
	strategies []Strategy
}

// New returns an Extractor trying the page metadata attributes first and the
// rendered version box second.
func New() *Extractor {
	return NewWithStrategies(Attributes, VersionBox)
}

func NewWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

func (e *Extractor) Extract(content string) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return Record{}, errors.Wrap(err, "parse page html")
	}

	for _, strategy := range e.strategies {
		if r, ok := strategy(doc); ok {
			return r, nil
		}
	}
	return Record{}, &ParseError{Tried: len(e.strategies)}
}

// Attributes reads the machine oriented data-dt-* attributes of <body>.
func Attributes(doc *goquery.Document) (Record, bool) {
	body := doc.Find(fmt.Sprintf("body[%s][%s]", attrVersion, attrFileSize)).First()
	if body.Length() == 0 {
		return Record{}, false
	}

	version := strings.TrimSpace(body.AttrOr(attrVersion, ""))
	sizeBytes, err := strconv.ParseInt(strings.TrimSpace(body.AttrOr(attrFileSize, "")), 10, 64)
	if version == "" || err != nil {
		return Record{}, false
	}

	return Record{
		Version: version,
		SizeMB:  round1(float64(sizeBytes) / 1024 / 1024),
	}, true
}

// VersionBox reads the human oriented text of the version box and the
// developer info list, e.g. <div class="head">152.3 MB</div><div class="desc">Size</div>.
func VersionBox(doc *goquery.Document) (Record, bool) {
	version := strings.TrimSpace(doc.Find(versionSelector).First().Text())
	if version == "" {
		return Record{}, false
	}

	desc := doc.Find(sizeDescSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), sizeToken)
	}).First()
	if desc.Length() == 0 {
		return Record{}, false
	}

	head := desc.PrevAllFiltered(sizeHeadSelector).First()
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(head.Text())))
	if len(fields) == 0 {
		return Record{}, false
	}
	sizeMB, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, false
	}

	return Record{Version: version, SizeMB: sizeMB}, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
