package mineru

import "encoding/json"

type ParseResponse struct {
	Backend string `json:"backend"`
	Version string `json:"version"`

	Results map[string]ParseResult `json:"results"`
}

type ParseResult struct {
	Markdown string `json:"md_content"`

	// content_list and content_tables arrive either as JSON or as JSON
	// encoded into a string, depending on the server version.
	ContentList   json.RawMessage `json:"content_list"`
	ContentTables json.RawMessage `json:"content_tables"`
}
