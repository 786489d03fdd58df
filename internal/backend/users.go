package backend

import "net/url"

// User is one account in a project.
type User struct {
	ID            string   `json:"$id"`
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Password      string   `json:"password,omitempty"` // hash, importable as-is
	Hash          string   `json:"hash,omitempty"`     // hashing algorithm name
	EmailVerified bool     `json:"emailVerification"`
	PhoneVerified bool     `json:"phoneVerification"`
	Labels        []string `json:"labels,omitempty"`
	Status        bool     `json:"status"`
}

// UserList is one page of a cursor-paginated user listing.
type UserList struct {
	Total int    `json:"total"`
	Users []User `json:"users"`
}

// ListUsers fetches one page of users in ascending creation order.
func (c *Client) ListUsers(limit int, cursor string) (*UserList, error) {
	var page UserList
	if err := c.getJSON("/users", listParams(limit, cursor), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAllUsers fetches every user, paging through the listing.
func (c *Client) ListAllUsers() ([]User, error) {
	var all []User
	cursor := ""
	for {
		page, err := c.ListUsers(100, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Users...)
		if len(page.Users) < 100 {
			return all, nil
		}
		cursor = page.Users[len(page.Users)-1].ID
	}
}

// GetUser fetches one user by ID.
func (c *Client) GetUser(id string) (*User, error) {
	var u User
	if err := c.getJSON("/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a user preserving the source ID and password hash.
func (c *Client) CreateUser(id string, u User) (*User, error) {
	var created User
	err := c.post("/users", map[string]interface{}{
		"userId":            id,
		"name":              u.Name,
		"email":             u.Email,
		"phone":             u.Phone,
		"password":          u.Password,
		"hash":              u.Hash,
		"emailVerification": u.EmailVerified,
		"phoneVerification": u.PhoneVerified,
		"labels":            u.Labels,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
