// Package router mounts the API's route sections on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Section is a path prefix with its own middleware, routes and nested
// sections. Sections are declared up front and mounted in one pass.
type Section struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Section
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewSection(prefix string) *Section {
	return &Section{prefix: prefix}
}

// Use appends middleware. Nil entries are skipped so optional guards can
// be passed unconditionally.
func (s *Section) Use(middleware ...gin.HandlerFunc) *Section {
	for _, mw := range middleware {
		if mw != nil {
			s.middleware = append(s.middleware, mw)
		}
	}
	return s
}

func (s *Section) Handle(method, path string, handlers ...gin.HandlerFunc) *Section {
	s.routes = append(s.routes, route{method: method, path: path, handlers: handlers})
	return s
}

func (s *Section) GET(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodGet, path, h...)
}

func (s *Section) POST(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPost, path, h...)
}

func (s *Section) PUT(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPut, path, h...)
}

func (s *Section) PATCH(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPatch, path, h...)
}

func (s *Section) DELETE(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodDelete, path, h...)
}

// Sub nests a section that runs after this section's middleware.
func (s *Section) Sub(prefix string) *Section {
	child := NewSection(prefix)
	s.children = append(s.children, child)
	return child
}

func (s *Section) mount(parent *gin.RouterGroup) {
	group := parent.Group(s.prefix, s.middleware...)
	for _, r := range s.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range s.children {
		child.mount(group)
	}
}

// Mount attaches sections under /api/<version>.
func Mount(engine *gin.Engine, version string, sections ...*Section) {
	api := engine.Group("/api/" + version)
	for _, s := range sections {
		s.mount(api)
	}
}
