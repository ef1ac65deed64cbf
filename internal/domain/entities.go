// Package domain defines the records the navigator searches over and the
// persistence models for load history. Entities are plain values: they carry
// no behavior beyond small accessors, so every layer can share them freely.
package domain

import "time"

// Kind tags a searchable entity.
type Kind string

const (
	KindResource Kind = "resource"
	KindPage     Kind = "page"
)

// ResourceRecord is one user-loaded cloud resource. Name is mandatory; the
// other fields default to "". Some resource types encode a compound key in
// Name as "primaryId,secondaryId".
type ResourceRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Region  string `json:"region"`
	Profile string `json:"profile"`
}

// PageRecord is an entry of the built-in console page catalog.
//
// IsGroupEnd is only ever set on search results: it marks the last page hit
// so a caller can render a boundary between page and resource results.
type PageRecord struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	IsGroupEnd bool   `json:"is_group_end,omitempty"`
}

// Entity is the tagged union of ResourceRecord and PageRecord. Exactly one of
// Resource or Page is non-nil, matching Kind.
type Entity struct {
	Kind     Kind            `json:"kind"`
	Resource *ResourceRecord `json:"resource,omitempty"`
	Page     *PageRecord     `json:"page,omitempty"`
}

// ResourceEntity wraps r as an Entity.
func ResourceEntity(r ResourceRecord) Entity {
	return Entity{Kind: KindResource, Resource: &r}
}

// PageEntity wraps p as an Entity.
func PageEntity(p PageRecord) Entity {
	return Entity{Kind: KindPage, Page: &p}
}

// DisplayName returns the text shown (and highlighted) for the entity.
func (e Entity) DisplayName() string {
	switch {
	case e.Resource != nil:
		return e.Resource.Name
	case e.Page != nil:
		return e.Page.Name
	}
	return ""
}

// IndexInfo summarizes a completed load.
type IndexInfo struct {
	LoadID     string    `json:"load_id,omitempty"`
	FileName   string    `json:"file_name"`
	TotalNames int       `json:"total_names"`
	Profiles   []string  `json:"profiles"`
	Regions    []string  `json:"regions"`
	LoadedAt   time.Time `json:"loaded_at"`
}
