// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// formatChecks covers the formats the resource schemas actually use; unknown
// format names pass unchecked, per draft-07.
var formatChecks = map[string]func(string) bool{
	"date-time": func(str string) bool {
		_, err := time.Parse(time.RFC3339, str)
		return err == nil
	},
	"date": func(str string) bool {
		_, err := time.Parse("2006-01-02", str)
		return err == nil
	},
	"time": func(str string) bool {
		_, err := time.Parse("15:04:05Z07:00", str)
		return err == nil
	},
	"email": func(str string) bool {
		return emailRegexp.MatchString(str)
	},
	"hostname": func(str string) bool {
		return len(str) <= 253 && hostnameRegexp.MatchString(str)
	},
	"ipv4": func(str string) bool {
		ip := net.ParseIP(str)
		return ip != nil && ip.To4() != nil && strings.Count(str, ".") == 3
	},
	"ipv6": func(str string) bool {
		ip := net.ParseIP(str)
		return ip != nil && strings.Contains(str, ":")
	},
	"uri": func(str string) bool {
		parsed, err := url.Parse(str)
		return err == nil && parsed.IsAbs()
	},
	"uri-reference": func(str string) bool {
		_, err := url.Parse(str)
		return err == nil
	},
	"regex": func(str string) bool {
		_, err := regexp.Compile(str)
		return err == nil
	},
	"json-pointer": func(str string) bool {
		return str == "" || strings.HasPrefix(str, "/")
	},
}

var (
	emailRegexp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)
