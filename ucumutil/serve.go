/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package ucumutil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ucum"
	"github.com/spatialmodel/ucum/symbol"
)

// Server answers unit requests over HTTP. The endpoints are
//
//	/parse?expr=kg.m/s2[&variant=ci]
//	/format?expr=kg.m/s2&to=print[&variant=ci]
//	/convert?value=1&from=[ft_i]&to=m[&variant=ci]
//
// and respond with JSON. Failed requests get a 400 status and an
// object holding the error message and, for parse errors, its kind
// and position.
type Server struct {
	cache   *Cache
	variant symbol.Variant
	mux     *http.ServeMux

	Log logrus.FieldLogger
}

// NewServer returns a server that parses with c, reading expressions
// in variant v unless a request names another.
func NewServer(c *Cache, v symbol.Variant) *Server {
	s := &Server{
		cache:   c,
		variant: v,
		mux:     http.NewServeMux(),
		Log:     logrus.StandardLogger(),
	}
	s.mux.HandleFunc("/parse", s.parse)
	s.mux.HandleFunc("/format", s.format)
	s.mux.HandleFunc("/convert", s.convert)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Log.WithFields(logrus.Fields{
		"url":  r.URL.String(),
		"addr": r.RemoteAddr,
	}).Info("ucum request")
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves requests on address until it fails.
func (s *Server) ListenAndServe(address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	s.Log.Infof("listening on http://%s", address)
	return srv.ListenAndServe()
}

// ParseResult is the response to /parse.
type ParseResult struct {
	Expr       string `json:"expr"`
	Unit       string `json:"unit"`
	Dimensions string `json:"dimensions"`
	Base       string `json:"base,omitempty"`
}

// FormatResult is the response to /format.
type FormatResult struct {
	Expr   string `json:"expr"`
	Result string `json:"result"`
}

// ErrorResult is the response to a failed request.
type ErrorResult struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Pos   *int   `json:"pos,omitempty"`
}

func (s *Server) requestVariant(r *http.Request, key string) (symbol.Variant, error) {
	name := r.FormValue(key)
	if name == "" {
		return s.variant, nil
	}
	return checkVariant(name)
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	v, err := s.requestVariant(r, "variant")
	if s.handleErr(w, r, err) {
		return
	}
	expr := r.FormValue("expr")
	u, err := s.cache.Parse(v, expr)
	if s.handleErr(w, r, err) {
		return
	}
	res := ParseResult{
		Expr:       expr,
		Unit:       s.cache.Formats()[v].Format(u),
		Dimensions: u.Dimensions().String(),
	}
	if c, err := u.ConverterToBase(); err == nil {
		res.Base = c.String()
	}
	s.write(w, r, res)
}

func (s *Server) format(w http.ResponseWriter, r *http.Request) {
	from, err := s.requestVariant(r, "variant")
	if s.handleErr(w, r, err) {
		return
	}
	to, err := s.requestVariant(r, "to")
	if s.handleErr(w, r, err) {
		return
	}
	expr := r.FormValue("expr")
	u, err := s.cache.Parse(from, expr)
	if s.handleErr(w, r, err) {
		return
	}
	s.write(w, r, FormatResult{Expr: expr, Result: s.cache.Formats()[to].Format(u)})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	v, err := s.requestVariant(r, "variant")
	if s.handleErr(w, r, err) {
		return
	}
	value := r.FormValue("value")
	if value == "" {
		value = "1"
	}
	c, err := Convert(s.cache, v, value, r.FormValue("from"), r.FormValue("to"))
	if s.handleErr(w, r, err) {
		return
	}
	s.write(w, r, c)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.WithFields(logrus.Fields{
			"url":   r.URL.String(),
			"error": err,
		}).Error("ucum writing response")
	}
}

// handleErr writes err to w and returns true if there is an error.
func (s *Server) handleErr(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	res := ErrorResult{Error: err.Error()}
	switch e := err.(type) {
	case *ucum.LexicalError:
		res.Kind, res.Pos = "lexical", &e.Pos
	case *ucum.SyntaxError:
		res.Kind, res.Pos = "syntax", &e.Pos
	case *ucum.UnknownUnitError:
		res.Kind, res.Pos = "unknown unit", &e.Pos
	case *ucum.UnsupportedOperationError:
		res.Kind = "unsupported"
		if e.Pos >= 0 {
			res.Pos = &e.Pos
		}
	}
	s.Log.WithFields(logrus.Fields{
		"url":   r.URL.String(),
		"error": err,
	}).Warn("ucum request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(res)
	return true
}
