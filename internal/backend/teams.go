package backend

import "net/url"

// Team is a named group of users.
type Team struct {
	ID   string `json:"$id"`
	Name string `json:"name"`
}

// Membership links a user to a team with a role set.
type Membership struct {
	ID        string   `json:"$id"`
	UserID    string   `json:"userId"`
	UserName  string   `json:"userName,omitempty"`
	UserEmail string   `json:"userEmail,omitempty"`
	Roles     []string `json:"roles"`
	Confirmed bool     `json:"confirm"`
}

type teamList struct {
	Total int    `json:"total"`
	Teams []Team `json:"teams"`
}

type membershipList struct {
	Total       int          `json:"total"`
	Memberships []Membership `json:"memberships"`
}

// ListTeams fetches every team, paging through the listing.
func (c *Client) ListTeams() ([]Team, error) {
	var all []Team
	cursor := ""
	for {
		var page teamList
		if err := c.getJSON("/teams", listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Teams...)
		if len(page.Teams) < 100 {
			return all, nil
		}
		cursor = page.Teams[len(page.Teams)-1].ID
	}
}

// GetTeam fetches one team by ID.
func (c *Client) GetTeam(id string) (*Team, error) {
	var t Team
	if err := c.getJSON("/teams/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTeam creates a team with the given ID and name.
func (c *Client) CreateTeam(id, name string) (*Team, error) {
	var created Team
	err := c.post("/teams", map[string]interface{}{
		"teamId": id,
		"name":   name,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListMemberships fetches every membership of a team.
func (c *Client) ListMemberships(teamID string) ([]Membership, error) {
	var all []Membership
	cursor := ""
	base := "/teams/" + url.PathEscape(teamID) + "/memberships"
	for {
		var page membershipList
		if err := c.getJSON(base, listParams(100, cursor), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Memberships...)
		if len(page.Memberships) < 100 {
			return all, nil
		}
		cursor = page.Memberships[len(page.Memberships)-1].ID
	}
}

// CreateMembership attaches an existing user to a team.
func (c *Client) CreateMembership(teamID string, m Membership) error {
	return c.post("/teams/"+url.PathEscape(teamID)+"/memberships", map[string]interface{}{
		"userId": m.UserID,
		"roles":  m.Roles,
	}, nil)
}
