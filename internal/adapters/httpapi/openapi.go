package httpapi

import (
	"net/http"

	"github.com/Jaseempk/kuri-web-sub004/internal/httpjson"
)

// handleOpenAPI renvoie une spec OpenAPI minimale pour cadrer l'API.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Kuri Countdown API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Countdown": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"timeLeft":        map[string]any{"type": "string"},
						"raffleTimeLeft":  map[string]any{"type": "string"},
						"depositTimeLeft": map[string]any{"type": "string"},
					},
				},
				"CycleRecord": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"phase":              map[string]any{"type": "string", "enum": []string{"launch", "active", "other"}},
						"launchDeadline":     map[string]any{"type": "integer", "format": "int64"},
						"raffleDeadline":     map[string]any{"type": "integer", "format": "int64"},
						"depositWindowStart": map[string]any{"type": "integer", "format": "int64"},
						"activeParticipants": map[string]any{"type": "integer"},
						"totalParticipants":  map[string]any{"type": "integer"},
					},
				},
				"Settings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"tickMillis":          map[string]any{"type": "integer", "format": "int64"},
						"debounceMillis":      map[string]any{"type": "integer", "format": "int64"},
						"depositWindowMillis": map[string]any{"type": "integer", "format": "int64"},
						"maxEventStreams":     map[string]any{"type": "integer"},
					},
				},
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
					},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health":  map[string]any{"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
			"/api/v1/version": map[string]any{"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
			"/api/v1/countdown": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Countdown")}},
			},
			"/api/v1/cycle": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"put": map[string]any{
					"requestBody": map[string]any{
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/CycleRecord"},
							},
						},
					},
					"responses": map[string]any{"200": map[string]any{"description": "OK"}},
				},
			},
			"/api/v1/settings": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")}},
				"put": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "SSE stream"}}},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
