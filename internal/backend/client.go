package backend

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/baasworks/migration-studio/internal/models"
)

// Client speaks the backend platform's REST API for one project credential
// set. Every typed resource surface (databases, storage, functions, users,
// teams) is a thin wrapper over the request helpers here.
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client from a Project.
func NewClient(p *models.Project) *Client {
	transport := &http.Transport{}
	if p.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL:   p.BaseURL(),
		projectID: p.ProjectID,
		apiKey:    p.APIKey,
		httpClient: &http.Client{
			Transport: transport,
		},
	}
}

// APIError is a non-2xx response from the backend, with the status code
// preserved so callers can tell "missing" and "conflict" apart.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the backend. A conflict on
// create means the resource already exists and is treated as a skip.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Project", c.projectID)
	req.Header.Set("X-Key", c.apiKey)
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path,
			&APIError{Status: resp.StatusCode, Message: truncate(string(body), 200)})
	}
	return body, nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(path string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req, err := c.newRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// getJSON performs an authenticated GET and unmarshals the response into dest.
func (c *Client) getJSON(path string, params url.Values, dest interface{}) error {
	body, err := c.get(path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// post performs an authenticated POST with a JSON body, unmarshaling the
// response into dest when dest is non-nil.
func (c *Client) post(path string, payload, dest interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := c.newRequest("POST", path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// postMultipart uploads a binary blob with accompanying form fields,
// unmarshaling the response into dest when dest is non-nil. Array-valued
// fields use the "key[]" convention.
func (c *Client) postMultipart(path string, fields map[string]string, arrays map[string][]string, fileField, filename string, blob []byte, dest interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	for k, vs := range arrays {
		for _, v := range vs {
			if err := mw.WriteField(k+"[]", v); err != nil {
				return fmt.Errorf("writing field %s: %w", k, err)
			}
		}
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(blob); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest("POST", path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// delete performs an authenticated DELETE request. 404 is not an error.
func (c *Client) delete(path string) error {
	req, err := c.newRequest("DELETE", path, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	if IsNotFound(err) {
		return nil // already gone
	}
	return err
}

// listParams builds cursor-after pagination query parameters.
func listParams(limit int, cursor string) url.Values {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("order", "asc")
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return params
}

// Ping checks connectivity and credentials by hitting the health endpoint.
func (c *Client) Ping() error {
	_, err := c.get("/health", nil)
	return err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
