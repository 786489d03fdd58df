package backend

import (
	"fmt"
	"net/url"
)

// Bucket is a storage container for files.
type Bucket struct {
	ID                    string   `json:"$id"`
	Name                  string   `json:"name"`
	Permissions           []string `json:"$permissions"`
	FileSecurity          bool     `json:"fileSecurity"`
	Enabled               bool     `json:"enabled"`
	MaximumFileSize       int64    `json:"maximumFileSize,omitempty"`
	AllowedFileExtensions []string `json:"allowedFileExtensions,omitempty"`
	Compression           string   `json:"compression,omitempty"`
	Encryption            bool     `json:"encryption"`
	Antivirus             bool     `json:"antivirus"`
}

// File is one stored object's metadata.
type File struct {
	ID           string   `json:"$id"`
	BucketID     string   `json:"bucketId"`
	Name         string   `json:"name"`
	Permissions  []string `json:"$permissions"`
	MimeType     string   `json:"mimeType"`
	SizeOriginal int64    `json:"sizeOriginal"`
}

type bucketList struct {
	Total   int      `json:"total"`
	Buckets []Bucket `json:"buckets"`
}

// FileList is one page of a cursor-paginated file listing.
type FileList struct {
	Total int    `json:"total"`
	Files []File `json:"files"`
}

// ListBuckets fetches every bucket, paging through the listing.
func (c *Client) ListBuckets() ([]Bucket, error) {
	var all []Bucket
	cursor := ""
	for {
		var page bucketList
		if err := c.getJSON("/storage/buckets", listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Buckets...)
		if len(page.Buckets) < 100 {
			return all, nil
		}
		cursor = page.Buckets[len(page.Buckets)-1].ID
	}
}

// GetBucket fetches one bucket by ID.
func (c *Client) GetBucket(id string) (*Bucket, error) {
	var b Bucket
	if err := c.getJSON("/storage/buckets/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBucket creates a bucket with the given ID and name and the settings
// captured from the source.
func (c *Client) CreateBucket(id, name string, b Bucket) (*Bucket, error) {
	var created Bucket
	err := c.post("/storage/buckets", map[string]interface{}{
		"bucketId":              id,
		"name":                  name,
		"permissions":           b.Permissions,
		"fileSecurity":          b.FileSecurity,
		"enabled":               b.Enabled,
		"maximumFileSize":       b.MaximumFileSize,
		"allowedFileExtensions": b.AllowedFileExtensions,
		"compression":           b.Compression,
		"encryption":            b.Encryption,
		"antivirus":             b.Antivirus,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListFiles fetches one page of files in ascending creation order, anchored
// after the given cursor file ID.
func (c *Client) ListFiles(bucketID string, limit int, cursor string) (*FileList, error) {
	var page FileList
	path := "/storage/buckets/" + url.PathEscape(bucketID) + "/files"
	if err := c.getJSON(path, listParams(limit, cursor), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetFile fetches one file's metadata by ID.
func (c *Client) GetFile(bucketID, fileID string) (*File, error) {
	var f File
	path := fmt.Sprintf("/storage/buckets/%s/files/%s", url.PathEscape(bucketID), url.PathEscape(fileID))
	if err := c.getJSON(path, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DownloadFile fetches the raw bytes of a file.
func (c *Client) DownloadFile(bucketID, fileID string) ([]byte, error) {
	path := fmt.Sprintf("/storage/buckets/%s/files/%s/download", url.PathEscape(bucketID), url.PathEscape(fileID))
	return c.get(path, nil)
}

// UploadFile creates a file preserving its original ID, name and permissions.
func (c *Client) UploadFile(bucketID, fileID, name string, permissions []string, blob []byte) (*File, error) {
	var created File
	path := "/storage/buckets/" + url.PathEscape(bucketID) + "/files"
	err := c.postMultipart(path,
		map[string]string{"fileId": fileID},
		map[string][]string{"permissions": permissions},
		"file", name, blob, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
