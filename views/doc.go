// Package views holds the templ components of the web UI. Edit the .templ
// files and regenerate the _templ.go files with templ generate.
package views

//go:generate templ generate
