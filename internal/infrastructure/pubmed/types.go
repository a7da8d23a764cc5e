package pubmed

import (
	"encoding/json"
	"encoding/xml"
	"strings"

	"oncodigest/internal/domain"
)

type esummaryResponse struct {
	Result esummaryResult `json:"result"`
}

// esummaryResult holds the "uids" index plus one record object per uid,
// all siblings in the same JSON object.
type esummaryResult struct {
	UIDs    []string
	Records map[string]json.RawMessage
}

func (r *esummaryResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["uids"]; ok {
		if err := json.Unmarshal(raw, &r.UIDs); err != nil {
			return err
		}
		delete(fields, "uids")
	}
	r.Records = fields
	return nil
}

type esummaryRecord struct {
	Title           string      `json:"title"`
	FullJournalName string      `json:"fulljournalname"`
	Source          string      `json:"source"`
	SortPubDate     string      `json:"sortpubdate"`
	EPubDate        string      `json:"epubdate"`
	PubDate         string      `json:"pubdate"`
	PubTypes        pubTypeList `json:"pubtype"`
	ArticleIDs      []articleID `json:"articleids"`
}

type articleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

func (rec esummaryRecord) toSummary(uid string) domain.Summary {
	journal := rec.FullJournalName
	if journal == "" {
		journal = rec.Source
	}

	// Date priority: sort date, then electronic pub date, then pub date.
	date := rec.SortPubDate
	if date == "" {
		date = rec.EPubDate
	}
	if date == "" {
		date = rec.PubDate
	}

	var doi string
	for _, aid := range rec.ArticleIDs {
		if strings.EqualFold(aid.IDType, "doi") {
			doi = aid.Value
			break
		}
	}

	return domain.Summary{
		PMID:     uid,
		Title:    strings.TrimSpace(rec.Title),
		Journal:  journal,
		PubDate:  NormalizeDate(date),
		PubTypes: rec.PubTypes,
		DOI:      doi,
	}
}

// pubTypeList tolerates the plain-string, string-list and structured
// object-list representations the summary service emits.
type pubTypeList []string

func (p *pubTypeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*p = []string{single}
		}
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}

	out := make([]string, 0, len(elems))
	for _, raw := range elems {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj map[string]string
		if err := json.Unmarshal(raw, &obj); err == nil {
			for _, key := range []string{"pubtype", "value", "name"} {
				if v := obj[key]; v != "" {
					out = append(out, v)
					break
				}
			}
		}
	}
	*p = out
	return nil
}

type efetchArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []efetchArticle `xml:"PubmedArticle"`
}

type efetchArticle struct {
	PMID     string            `xml:"MedlineCitation>PMID"`
	Sections []abstractSection `xml:"MedlineCitation>Article>Abstract>AbstractText"`
}

type abstractSection struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

// abstractText joins the abstract sections with blank lines, keeping
// section labels ("Background:", "Methods:") when present.
func (a efetchArticle) abstractText() string {
	parts := make([]string, 0, len(a.Sections))
	for _, sec := range a.Sections {
		text := strings.TrimSpace(sec.Text)
		if text == "" {
			continue
		}
		if label := strings.TrimSpace(sec.Label); label != "" {
			text = label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
