package main

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// apiClient is a logged-in session against the service. The session cookie
// lives in the resty cookie jar.
type apiClient struct {
	http  *resty.Client
	email string
}

func newAPIClient(base string) *apiClient {
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &apiClient{http: c}
}

func (c *apiClient) login(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("--email and --password required")
	}
	resp, err := c.http.R().
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/login")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("login failed: http %d: %s", resp.StatusCode(), resp.String())
	}
	c.email = email
	return nil
}

// get fetches path with params plus the caller's identity and copies the body to out.
func (c *apiClient) get(path string, params url.Values, out io.Writer) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("email", c.email)
	resp, err := c.http.R().SetQueryParamsFromValues(q).Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}
