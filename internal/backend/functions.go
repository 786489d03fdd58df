package backend

import (
	"fmt"
	"net/url"
	"strconv"
)

// Deployment build statuses.
const (
	DeploymentProcessing = "processing"
	DeploymentBuilding   = "building"
	DeploymentReady      = "ready"
	DeploymentFailed     = "failed"
)

// Function is a serverless function definition.
type Function struct {
	ID         string   `json:"$id"`
	Name       string   `json:"name"`
	Runtime    string   `json:"runtime"`
	Entrypoint string   `json:"entrypoint,omitempty"`
	Commands   string   `json:"commands,omitempty"`
	Timeout    int      `json:"timeout,omitempty"`
	Enabled    bool     `json:"enabled"`
	Events     []string `json:"events,omitempty"`
	Schedule   string   `json:"schedule,omitempty"`
	Execute    []string `json:"execute,omitempty"`
}

// Deployment is one build of a function's code archive.
type Deployment struct {
	ID         string `json:"$id"`
	Status     string `json:"status"` // processing, building, ready, failed
	Entrypoint string `json:"entrypoint,omitempty"`
	Activate   bool   `json:"activate,omitempty"`
	CreatedAt  string `json:"$createdAt,omitempty"`
}

// Variable is one environment variable attached to a function.
type Variable struct {
	ID    string `json:"$id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Execution is one synchronous or queued invocation of a function.
type Execution struct {
	ID             string `json:"$id"`
	Status         string `json:"status"`
	ResponseBody   string `json:"responseBody"`
	ResponseStatus int    `json:"responseStatusCode"`
}

type functionList struct {
	Total     int        `json:"total"`
	Functions []Function `json:"functions"`
}

type deploymentList struct {
	Total       int          `json:"total"`
	Deployments []Deployment `json:"deployments"`
}

type variableList struct {
	Total     int        `json:"total"`
	Variables []Variable `json:"variables"`
}

// ListFunctions fetches every function, paging through the listing.
func (c *Client) ListFunctions() ([]Function, error) {
	var all []Function
	cursor := ""
	for {
		var page functionList
		if err := c.getJSON("/functions", listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Functions...)
		if len(page.Functions) < 100 {
			return all, nil
		}
		cursor = page.Functions[len(page.Functions)-1].ID
	}
}

// GetFunction fetches one function by ID.
func (c *Client) GetFunction(id string) (*Function, error) {
	var fn Function
	if err := c.getJSON("/functions/"+url.PathEscape(id), nil, &fn); err != nil {
		return nil, err
	}
	return &fn, nil
}

// CreateFunction creates a function with the given ID and the settings
// captured from the source.
func (c *Client) CreateFunction(id, name string, fn Function) (*Function, error) {
	var created Function
	err := c.post("/functions", map[string]interface{}{
		"functionId": id,
		"name":       name,
		"runtime":    fn.Runtime,
		"entrypoint": fn.Entrypoint,
		"commands":   fn.Commands,
		"timeout":    fn.Timeout,
		"enabled":    fn.Enabled,
		"events":     fn.Events,
		"schedule":   fn.Schedule,
		"execute":    fn.Execute,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteFunction removes a function and its deployments.
func (c *Client) DeleteFunction(id string) error {
	return c.delete("/functions/" + url.PathEscape(id))
}

// ListVariables fetches a function's environment variables.
func (c *Client) ListVariables(functionID string) ([]Variable, error) {
	var page variableList
	if err := c.getJSON("/functions/"+url.PathEscape(functionID)+"/variables", nil, &page); err != nil {
		return nil, err
	}
	return page.Variables, nil
}

// CreateVariable attaches an environment variable to a function.
func (c *Client) CreateVariable(functionID, key, value string) error {
	return c.post("/functions/"+url.PathEscape(functionID)+"/variables", map[string]interface{}{
		"key":   key,
		"value": value,
	}, nil)
}

// ListDeployments fetches a function's deployments, most recent first.
func (c *Client) ListDeployments(functionID string) ([]Deployment, error) {
	var page deploymentList
	if err := c.getJSON("/functions/"+url.PathEscape(functionID)+"/deployments", nil, &page); err != nil {
		return nil, err
	}
	return page.Deployments, nil
}

// GetDeployment fetches one deployment, including its build status.
func (c *Client) GetDeployment(functionID, deploymentID string) (*Deployment, error) {
	var dep Deployment
	path := fmt.Sprintf("/functions/%s/deployments/%s", url.PathEscape(functionID), url.PathEscape(deploymentID))
	if err := c.getJSON(path, nil, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

// DownloadDeployment fetches the code archive of a deployment.
func (c *Client) DownloadDeployment(functionID, deploymentID string) ([]byte, error) {
	path := fmt.Sprintf("/functions/%s/deployments/%s/download", url.PathEscape(functionID), url.PathEscape(deploymentID))
	return c.get(path, nil)
}

// CreateDeployment uploads a code archive and optionally activates it once
// built.
func (c *Client) CreateDeployment(functionID string, archive []byte, entrypoint, commands string, activate bool) (*Deployment, error) {
	var created Deployment
	path := "/functions/" + url.PathEscape(functionID) + "/deployments"
	err := c.postMultipart(path, map[string]string{
		"entrypoint": entrypoint,
		"commands":   commands,
		"activate":   strconv.FormatBool(activate),
	}, nil, "code", "code.tar.gz", archive, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateExecution invokes a function. With async=false the call blocks until
// the function returns and the response body is included.
func (c *Client) CreateExecution(functionID, body string, async bool) (*Execution, error) {
	var exec Execution
	err := c.post("/functions/"+url.PathEscape(functionID)+"/executions", map[string]interface{}{
		"body":  body,
		"async": async,
	}, &exec)
	if err != nil {
		return nil, err
	}
	return &exec, nil
}
