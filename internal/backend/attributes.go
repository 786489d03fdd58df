package backend

import (
	"fmt"
	"net/url"
)

// AttributeKind is the closed set of attribute types the schema supports.
// Creation dispatches exhaustively on it; an unknown kind is an error, never
// a silent fallthrough.
type AttributeKind string

const (
	AttrString       AttributeKind = "string"
	AttrInteger      AttributeKind = "integer"
	AttrFloat        AttributeKind = "float"
	AttrBoolean      AttributeKind = "boolean"
	AttrEmail        AttributeKind = "email"
	AttrURL          AttributeKind = "url"
	AttrIP           AttributeKind = "ip"
	AttrDatetime     AttributeKind = "datetime"
	AttrEnum         AttributeKind = "enum"
	AttrRelationship AttributeKind = "relationship"
)

// Attribute is one field of a collection schema. On the wire the kind is
// split across "type" and "format" (email, url, ip and enum are formats of
// string); Kind folds the pair back into the closed union.
type Attribute struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Status   string `json:"status,omitempty"`
	Required bool   `json:"required"`
	Array    bool   `json:"array,omitempty"`

	// String attributes.
	Size int `json:"size,omitempty"`

	// Integer/float bounds and defaults. Kept loosely typed because source
	// metadata may carry sentinel strings; the executor sanitizes before
	// creation.
	Min     interface{} `json:"min,omitempty"`
	Max     interface{} `json:"max,omitempty"`
	Default interface{} `json:"default,omitempty"`

	// Enum attributes.
	Elements []string `json:"elements,omitempty"`

	// Relationship attributes.
	RelatedCollection string `json:"relatedCollection,omitempty"`
	RelationType      string `json:"relationType,omitempty"` // "oneToOne", "oneToMany", "manyToOne", "manyToMany"
	TwoWay            bool   `json:"twoWay,omitempty"`
	TwoWayKey         string `json:"twoWayKey,omitempty"`
	OnDelete          string `json:"onDelete,omitempty"` // "cascade", "restrict", "setNull"
	Side              string `json:"side,omitempty"`     // "parent", "child"
}

// Kind maps the wire type/format pair onto the closed union.
func (a Attribute) Kind() (AttributeKind, error) {
	switch a.Type {
	case "string":
		switch a.Format {
		case "":
			return AttrString, nil
		case "email":
			return AttrEmail, nil
		case "url":
			return AttrURL, nil
		case "ip":
			return AttrIP, nil
		case "enum":
			return AttrEnum, nil
		case "datetime":
			return AttrDatetime, nil
		}
		return "", fmt.Errorf("attribute %s: unknown string format %q", a.Key, a.Format)
	case "integer":
		return AttrInteger, nil
	case "double", "float":
		return AttrFloat, nil
	case "boolean":
		return AttrBoolean, nil
	case "datetime":
		return AttrDatetime, nil
	case "relationship":
		return AttrRelationship, nil
	}
	return "", fmt.Errorf("attribute %s: unknown type %q", a.Key, a.Type)
}

// IsRelationship reports whether the attribute references another collection.
func (a Attribute) IsRelationship() bool {
	return a.Type == "relationship"
}

// CreateAttribute creates one attribute on the given collection, dispatching
// on the attribute kind. Bounds and defaults are sent as provided; callers
// sanitize numeric values beforehand.
func (c *Client) CreateAttribute(databaseID, collectionID string, a Attribute) error {
	kind, err := a.Kind()
	if err != nil {
		return err
	}

	base := fmt.Sprintf("/databases/%s/collections/%s/attributes",
		url.PathEscape(databaseID), url.PathEscape(collectionID))

	payload := map[string]interface{}{
		"key":      a.Key,
		"required": a.Required,
		"array":    a.Array,
	}
	if a.Default != nil {
		payload["default"] = a.Default
	}

	switch kind {
	case AttrString:
		payload["size"] = a.Size
		return c.post(base+"/string", payload, nil)
	case AttrEmail:
		return c.post(base+"/email", payload, nil)
	case AttrURL:
		return c.post(base+"/url", payload, nil)
	case AttrIP:
		return c.post(base+"/ip", payload, nil)
	case AttrDatetime:
		return c.post(base+"/datetime", payload, nil)
	case AttrBoolean:
		return c.post(base+"/boolean", payload, nil)
	case AttrInteger:
		if a.Min != nil {
			payload["min"] = a.Min
		}
		if a.Max != nil {
			payload["max"] = a.Max
		}
		return c.post(base+"/integer", payload, nil)
	case AttrFloat:
		if a.Min != nil {
			payload["min"] = a.Min
		}
		if a.Max != nil {
			payload["max"] = a.Max
		}
		return c.post(base+"/float", payload, nil)
	case AttrEnum:
		payload["elements"] = a.Elements
		return c.post(base+"/enum", payload, nil)
	case AttrRelationship:
		return c.post(base+"/relationship", map[string]interface{}{
			"key":               a.Key,
			"relatedCollection": a.RelatedCollection,
			"type":              a.RelationType,
			"twoWay":            a.TwoWay,
			"twoWayKey":         a.TwoWayKey,
			"onDelete":          a.OnDelete,
		}, nil)
	}
	return fmt.Errorf("attribute %s: unhandled kind %q", a.Key, kind)
}
