package ratelimit

import (
	"regexp"
	"strings"

	"github.com/MKhiriev/go-auth-gate/internal/config"
)

// Endpoint classes that have no override of their own.
const (
	EndpointNoteByID   = "/api/notes/{id}"
	EndpointActivities = "/api/activities"
	EndpointAuth       = "/api/auth"
)

var (
	noteIDPattern  = regexp.MustCompile(`^/api/notes/\d+`)
	numericSegment = regexp.MustCompile(`/\d+(/|$)`)
)

// NormalizeEndpoint maps a request path onto the endpoint class its bucket
// is keyed by, so that /api/notes/1 and /api/notes/2 share one bucket.
//
//	/api/notes/42/share         -> /api/notes/{id}
//	/api/auth/public/signin     -> /api/auth/login
//	/api/auth/public/signup     -> /api/auth/register
//	/api/auth/enable-2fa        -> /api/auth/2fa
//	/api/admin/rate-limit/reset -> /api/admin/**
//	/login/oauth2/code/github   -> /oauth2
//	/api/tags/7                 -> /api/tags/{id}
func NormalizeEndpoint(path string) string {
	switch {
	case path == config.EndpointNotes:
		return config.EndpointNotes

	case strings.HasPrefix(path, config.EndpointNotes+"/"):
		switch {
		case noteIDPattern.MatchString(path):
			return EndpointNoteByID
		case strings.Contains(path, "/favorites"):
			return config.EndpointNotesFavorites
		case strings.Contains(path, "/stats"):
			return config.EndpointNotesStats
		case strings.Contains(path, "/search"):
			return config.EndpointNotesSearch
		}
		return config.EndpointNotes

	case strings.HasPrefix(path, EndpointActivities+"/"):
		if strings.Contains(path, "/recent") {
			return config.EndpointActivitiesRecent
		}
		return EndpointActivities

	case strings.HasPrefix(path, EndpointAuth+"/"):
		switch {
		case strings.Contains(path, "/login"), strings.Contains(path, "/signin"):
			return config.EndpointLogin
		case strings.Contains(path, "/register"), strings.Contains(path, "/signup"):
			return config.EndpointRegister
		case strings.Contains(path, "/refresh"):
			return config.EndpointRefresh
		case strings.Contains(path, "2fa"):
			return config.EndpointTwoFactor
		}
		return EndpointAuth

	case strings.HasPrefix(path, "/api/admin/"):
		return config.EndpointAdmin

	case strings.HasPrefix(path, config.EndpointOAuth+"/"), strings.HasPrefix(path, "/login/oauth2/"):
		return config.EndpointOAuth
	}

	return collapseIDs(path)
}

func collapseIDs(path string) string {
	// ReplaceAll does not revisit the trailing slash it consumed, so run
	// until stable for paths like /a/1/2
	for {
		next := numericSegment.ReplaceAllString(path, "/{id}$1")
		if next == path {
			return path
		}
		path = next
	}
}

// BuildKey returns the bucket key for a caller. An empty username means an
// anonymous caller keyed by address only.
func BuildKey(username, clientIP, endpoint string) string {
	if username == "" {
		return "ip:" + clientIP + ":endpoint:" + endpoint
	}
	return "identity:" + username + ":ip:" + clientIP + ":endpoint:" + endpoint
}
