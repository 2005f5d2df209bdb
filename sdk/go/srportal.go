// Package srportal provides a Go SDK for the ProCare service request API.
//
// The SDK covers everything the intake wizard and the request dashboard
// need:
//   - login and the current profile
//   - countries, languages, legal notices and the issue reason taxonomy
//   - item, serial, lot and customer lookups
//   - item and customer validation
//   - request submission, listing, detail and status changes
//   - attachment upload and download links
//
// Basic usage:
//
//	c := srportal.NewClient(&srportal.Config{BaseURL: "http://localhost:8000"})
//	login, err := c.Auth.Login(ctx, "customer@hospital.com", "password")
//	c.SetAuth(srportal.NewJWTAuth(login.AccessToken, login.ExpiresAt))
//	requests, err := c.Requests.List(ctx, nil)
package srportal

import (
	"time"

	"github.com/procare-io/srportal/sdk/go/auth"
	"github.com/procare-io/srportal/sdk/go/client"
)

type Client = client.Client

type Config = client.Config

func NewClient(config *Config) *Client {
	return client.NewClient(config)
}

// NewClientWithToken creates a client authenticated with a login token.
func NewClientWithToken(baseURL, token string, expiresAt time.Time) *Client {
	return client.NewClientWithToken(baseURL, token, expiresAt)
}

var (
	NewJWTAuth = auth.NewJWTAuth
	NewNoAuth  = auth.NewNoAuth
)

const (
	// Version is the current SDK version
	Version = "1.0.0"

	// UserAgent is the default user agent string
	UserAgent = "srportal-go-sdk/" + Version
)
