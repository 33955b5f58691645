package site

import (
	"net/http"
	"slices"
)

// Route is one entry of the routing table.
type Route struct {
	Method  string
	Pattern string
	Name    string
}

var routeTable = []Route{
	{Method: http.MethodGet, Pattern: "/", Name: "home"},
	{Method: http.MethodGet, Pattern: "/login", Name: "login"},
	{Method: http.MethodGet, Pattern: "/register", Name: "register"},
	{Method: http.MethodPost, Pattern: "/register", Name: "register.submit"},
	{Method: http.MethodPost, Pattern: "/register/resend", Name: "register.resend"},
	{Method: http.MethodGet, Pattern: "/registerstartup", Name: "registerstartup"},
	{Method: http.MethodPost, Pattern: "/registerstartup", Name: "registerstartup.submit"},
	{Method: http.MethodGet, Pattern: "/startups/{id}", Name: "startup"},
	{Method: http.MethodGet, Pattern: "/dashboard", Name: "dashboard"},
	{Method: http.MethodGet, Pattern: "/messages", Name: "messages"},
	{Method: http.MethodGet, Pattern: "/assets/*", Name: "assets"},
}

// Routes lists the routing table in registration order. Unmatched paths
// render the not-found page.
func Routes() []Route {
	return slices.Clone(routeTable)
}
