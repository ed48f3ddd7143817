// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// parseReference reads a relation written either as an IRI ("/users/3"),
// a numeric string or a number. A JSON null yields 0.
func parseReference(raw json.RawMessage, prefix string) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n <= 0 {
			return 0, badRequest(fmt.Sprintf("Invalid identifier %d.", n), nil)
		}
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, badRequest("Expected IRI or identifier, got "+string(raw)+".", err)
	}
	return parseReferenceString(s, prefix)
}

// parseReferenceString accepts "/prefix/<id>" or "<id>".
func parseReferenceString(s, prefix string) (int, error) {
	s = strings.TrimSpace(s)
	idPart := s
	if strings.HasPrefix(s, "/") {
		if !strings.HasPrefix(s, prefix+"/") {
			return 0, badRequest(fmt.Sprintf("Invalid IRI %q.", s), nil)
		}
		idPart = strings.TrimPrefix(s, prefix+"/")
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Sprintf("Invalid IRI %q.", s), err)
	}
	return id, nil
}
