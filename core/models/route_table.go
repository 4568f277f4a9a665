package models

import (
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/shared"
)

// RouteEntry pairs a page url with the identifier bound to its lazy loader.
type RouteEntry struct {
	URL       string
	Component string
	// ImportPath is the page module exactly as the root module imported it.
	ImportPath string
}

// RouteTable keeps entries in discovery order.
type RouteTable struct {
	Routes []RouteEntry
}

func NewRouteTable() *RouteTable {
	return &RouteTable{Routes: []RouteEntry{}}
}

// PageURL strips the leading "./" or "/" from a page import path.
func PageURL(importPath string) string {
	return shared.TrimRelative(importPath)
}

func (rt *RouteTable) AddRoute(importPath, component string) RouteEntry {
	entry := RouteEntry{
		URL:        PageURL(importPath),
		Component:  component,
		ImportPath: importPath,
	}
	rt.Routes = append(rt.Routes, entry)
	logger.Debug("Registered page: %s -> %s", entry.URL, component)
	return entry
}

func (rt *RouteTable) Len() int {
	return len(rt.Routes)
}

func (rt *RouteTable) PrintTable(level logger.LogLevel) {
	for _, route := range rt.Routes {
		logger.GetLogFromLevel(level)("  %s -> %s", route.URL, route.Component)
	}
}
