package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientPrefersHTML(t *testing.T) {
	tests := []struct {
		accept   string
		expected bool
	}{
		{accept: "", expected: false},
		{accept: "text/html", expected: true},
		{accept: "application/json", expected: false},
		{accept: "*/*", expected: false},
		{accept: "text/html, application/json", expected: false},
		{accept: "application/json;q=0.5, text/html", expected: true},
		{accept: "text/html;q=0.5, application/json", expected: false},
		{accept: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", expected: true},
		{accept: "text/*", expected: true},
		{accept: "text/html;q=0", expected: false},
		{accept: "TEXT/HTML", expected: true},
		{accept: "text/html;q=abc", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientPrefersHTML(tt.accept))
		})
	}
}
