package model

import (
	"encoding/json"
	"strconv"
)

// Element types emitted by layout extractors.
const (
	ElementText      = "text"
	ElementTable     = "table"
	ElementImage     = "image"
	ElementEquation  = "equation"
	ElementDiscarded = "discarded"
)

// NoPage marks an element or candidate whose page is unknown.
const NoPage = -1

// Element is one entry of a layout extractor's content list.
type Element struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	TextLevel int    `json:"text_level,omitempty"`

	Page int   `json:"page_idx"`
	BBox *BBox `json:"bbox,omitempty"`

	ID           FlexString `json:"id,omitempty"`
	TableBody    string     `json:"table_body,omitempty"`
	TableCaption []string   `json:"table_caption,omitempty"`
	ImagePath    string     `json:"img_path,omitempty"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	type alias Element

	a := alias{Page: NoPage}

	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	*e = Element(a)
	return nil
}

// HasPage reports whether the element carries a usable page index.
func (e Element) HasPage() bool {
	return e.Page >= 0
}

// FlexString decodes JSON strings and numbers alike. Upstream services are
// inconsistent about whether ids are numeric.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}

	if i, err := num.Int64(); err == nil {
		*s = FlexString(strconv.FormatInt(i, 10))
		return nil
	}

	*s = FlexString(num.String())
	return nil
}
