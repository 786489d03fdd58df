package backend

import (
	"fmt"
	"net/url"
)

// Database is a top-level schema container.
type Database struct {
	ID   string `json:"$id"`
	Name string `json:"name"`
}

// Collection groups documents under a database.
type Collection struct {
	ID               string   `json:"$id"`
	DatabaseID       string   `json:"databaseId,omitempty"`
	Name             string   `json:"name"`
	Permissions      []string `json:"$permissions"`
	DocumentSecurity bool     `json:"documentSecurity"`
	Enabled          bool     `json:"enabled"`
}

// Index references previously created attributes of its collection.
type Index struct {
	Key        string   `json:"key"`
	Type       string   `json:"type"` // "key", "unique", "fulltext"
	Status     string   `json:"status,omitempty"`
	Attributes []string `json:"attributes"`
	Orders     []string `json:"orders,omitempty"`
}

// Document is a row with $-prefixed system fields alongside user data.
type Document map[string]interface{}

// ID returns the document's $id, or "" when absent.
func (d Document) ID() string {
	if id, ok := d["$id"].(string); ok {
		return id
	}
	return ""
}

// Permissions returns the document's $permissions list.
func (d Document) Permissions() []string {
	raw, ok := d["$permissions"].([]interface{})
	if !ok {
		return nil
	}
	perms := make([]string, 0, len(raw))
	for _, p := range raw {
		if s, ok := p.(string); ok {
			perms = append(perms, s)
		}
	}
	return perms
}

type databaseList struct {
	Total     int        `json:"total"`
	Databases []Database `json:"databases"`
}

type collectionList struct {
	Total       int          `json:"total"`
	Collections []Collection `json:"collections"`
}

type attributeList struct {
	Total      int         `json:"total"`
	Attributes []Attribute `json:"attributes"`
}

type indexList struct {
	Total   int     `json:"total"`
	Indexes []Index `json:"indexes"`
}

// DocumentList is one page of a cursor-paginated document listing.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// ListDatabases fetches every database, paging through the listing.
func (c *Client) ListDatabases() ([]Database, error) {
	var all []Database
	cursor := ""
	for {
		var page databaseList
		if err := c.getJSON("/databases", listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Databases...)
		if len(page.Databases) < 100 {
			return all, nil
		}
		cursor = page.Databases[len(page.Databases)-1].ID
	}
}

// GetDatabase fetches one database by ID.
func (c *Client) GetDatabase(id string) (*Database, error) {
	var db Database
	if err := c.getJSON("/databases/"+url.PathEscape(id), nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// CreateDatabase creates a database with the given ID and name.
func (c *Client) CreateDatabase(id, name string) (*Database, error) {
	var db Database
	err := c.post("/databases", map[string]interface{}{
		"databaseId": id,
		"name":       name,
	}, &db)
	if err != nil {
		return nil, err
	}
	return &db, nil
}

// ListCollections fetches every collection of a database.
func (c *Client) ListCollections(databaseID string) ([]Collection, error) {
	var all []Collection
	cursor := ""
	base := "/databases/" + url.PathEscape(databaseID) + "/collections"
	for {
		var page collectionList
		if err := c.getJSON(base, listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Collections...)
		if len(page.Collections) < 100 {
			return all, nil
		}
		cursor = page.Collections[len(page.Collections)-1].ID
	}
}

// GetCollection fetches one collection by ID.
func (c *Client) GetCollection(databaseID, collectionID string) (*Collection, error) {
	var col Collection
	path := fmt.Sprintf("/databases/%s/collections/%s", url.PathEscape(databaseID), url.PathEscape(collectionID))
	if err := c.getJSON(path, nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// CreateCollection creates a collection with the given ID, name and the
// permission settings captured from the source.
func (c *Client) CreateCollection(databaseID, id, name string, col Collection) (*Collection, error) {
	var created Collection
	err := c.post("/databases/"+url.PathEscape(databaseID)+"/collections", map[string]interface{}{
		"collectionId":     id,
		"name":             name,
		"permissions":      col.Permissions,
		"documentSecurity": col.DocumentSecurity,
		"enabled":          col.Enabled,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListAttributes fetches every attribute of a collection.
func (c *Client) ListAttributes(databaseID, collectionID string) ([]Attribute, error) {
	var page attributeList
	path := fmt.Sprintf("/databases/%s/collections/%s/attributes", url.PathEscape(databaseID), url.PathEscape(collectionID))
	if err := c.getJSON(path, nil, &page); err != nil {
		return nil, err
	}
	return page.Attributes, nil
}

// ListIndexes fetches every index of a collection.
func (c *Client) ListIndexes(databaseID, collectionID string) ([]Index, error) {
	var page indexList
	path := fmt.Sprintf("/databases/%s/collections/%s/indexes", url.PathEscape(databaseID), url.PathEscape(collectionID))
	if err := c.getJSON(path, nil, &page); err != nil {
		return nil, err
	}
	return page.Indexes, nil
}

// CreateIndex creates an index on the given collection.
func (c *Client) CreateIndex(databaseID, collectionID string, idx Index) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/indexes", url.PathEscape(databaseID), url.PathEscape(collectionID))
	return c.post(path, map[string]interface{}{
		"key":        idx.Key,
		"type":       idx.Type,
		"attributes": idx.Attributes,
		"orders":     idx.Orders,
	}, nil)
}

// ListDocuments fetches one page of documents in ascending creation order,
// anchored after the given cursor document ID.
func (c *Client) ListDocuments(databaseID, collectionID string, limit int, cursor string) (*DocumentList, error) {
	var page DocumentList
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", url.PathEscape(databaseID), url.PathEscape(collectionID))
	if err := c.getJSON(path, listParams(limit, cursor), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDocument fetches one document by ID.
func (c *Client) GetDocument(databaseID, collectionID, documentID string) (Document, error) {
	var doc Document
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s",
		url.PathEscape(databaseID), url.PathEscape(collectionID), url.PathEscape(documentID))
	if err := c.getJSON(path, nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDocument creates a document preserving its original ID and
// permissions. The data must already be stripped of system fields.
func (c *Client) CreateDocument(databaseID, collectionID, documentID string, data Document, permissions []string) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", url.PathEscape(databaseID), url.PathEscape(collectionID))
	return c.post(path, map[string]interface{}{
		"documentId":  documentID,
		"data":        data,
		"permissions": permissions,
	}, nil)
}
