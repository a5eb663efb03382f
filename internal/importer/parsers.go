package importer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/finlens-dev/finlens/internal/model"
)

// CorpCodeEntry is the file name of the table inside the DART zip.
const CorpCodeEntry = "CORPCODE.xml"

type xmlCorp struct {
	Code       string `xml:"corp_code"`
	Name       string `xml:"corp_name"`
	StockCode  string `xml:"stock_code"`
	ModifyDate string `xml:"modify_date"`
}

// XMLParser reads CORPCODE.xml: a root element holding one <list> per company.
type XMLParser struct{}

// Format returns the parser name.
func (p *XMLParser) Format() string { return "xml" }

// Parse streams the <list> elements of r.
func (p *XMLParser) Parse(r io.Reader) ([]model.Corp, error) {
	dec := xml.NewDecoder(r)
	var corps []model.Corp
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corp code XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "list" {
			continue
		}
		var x xmlCorp
		if err := dec.DecodeElement(&x, &start); err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(corps)+1, err)
		}
		c := clean(model.Corp{Code: x.Code, Name: x.Name, StockCode: x.StockCode, ModifyDate: x.ModifyDate})
		if c.Code == "" {
			return nil, fmt.Errorf("entry %d: missing corp_code", len(corps)+1)
		}
		corps = append(corps, c)
	}
	return corps, nil
}

// ZipParser reads the zip archive the corpCode endpoint serves.
type ZipParser struct{}

// Format returns the parser name.
func (p *ZipParser) Format() string { return "zip" }

// Parse finds CORPCODE.xml (case-insensitively) in the archive and parses it.
func (p *ZipParser) Parse(r io.Reader) ([]model.Corp, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading zip: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, CorpCodeEntry) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		defer rc.Close()
		return (&XMLParser{}).Parse(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", CorpCodeEntry)
}

// JSONParser reads the {"list": [...]} form produced by earlier exports.
type JSONParser struct{}

// Format returns the parser name.
func (p *JSONParser) Format() string { return "json" }

// Parse decodes r.
func (p *JSONParser) Parse(r io.Reader) ([]model.Corp, error) {
	var doc struct {
		List []model.Corp `json:"list"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding corp code JSON: %w", err)
	}
	corps := make([]model.Corp, 0, len(doc.List))
	for i, c := range doc.List {
		c = clean(c)
		if c.Code == "" {
			return nil, fmt.Errorf("entry %d: missing corp_code", i+1)
		}
		corps = append(corps, c)
	}
	return corps, nil
}
