// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Create an account", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"200": {"description": "id"}, "400": {"description": "Bad Request"}, "500": {"description": "Internal Server Error"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Issue a bearer token", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"200": {"description": "token"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/readings": {
            "get": {"tags": ["readings"], "summary": "List accepted readings", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReadingPage"}}, "400": {"description": "Bad Request"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["readings"], "summary": "Submit a reading", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.readingRequest"}}],
                "responses": {"200": {"description": "not accepted", "schema": {"$ref": "#/definitions/models.Evaluation"}}, "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Evaluation"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/readings/latest": {
            "get": {"tags": ["readings"], "summary": "Most recent accepted reading", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SensorReading"}}, "404": {"description": "Not Found"}}}
        },
        "/api/readings/clear": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["readings"], "summary": "Delete all readings",
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/readings/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["readings"], "summary": "Delete a reading",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/thresholds": {
            "get": {"tags": ["thresholds"], "summary": "Threshold history", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ThresholdSetting"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["thresholds"], "summary": "Record a threshold", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.thresholdRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ThresholdSetting"}}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/thresholds/latest": {
            "get": {"tags": ["thresholds"], "summary": "Current threshold", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ThresholdSetting"}}, "404": {"description": "Not Found"}}}
        },
        "/api/thresholds/clear": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["thresholds"], "summary": "Delete the whole threshold history",
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/thresholds/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["thresholds"], "summary": "Delete a threshold",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/api/live": {
            "get": {"tags": ["live"], "summary": "Live broker status", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LiveStatus"}}}}
        },
        "/api/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "List audit events", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/ws": {
            "get": {"tags": ["live"], "summary": "Live status stream",
                "parameters": [
                    {"type": "string", "name": "interval", "in": "query"},
                    {"type": "integer", "name": "interval_ms", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "definitions": {
        "handlers.authCredentials": {"type": "object", "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.readingRequest": {"type": "object", "required": ["value"],
            "properties": {"value": {"type": "number", "example": 31.5}, "observed_at": {"type": "string", "example": "2025-08-27T15:04:05Z"}}},
        "handlers.thresholdRequest": {"type": "object", "required": ["value"],
            "properties": {"value": {"type": "number", "example": 30}, "note": {"type": "string", "example": "summer profile"}}},
        "models.SensorReading": {"type": "object",
            "properties": {"id": {"type": "string"}, "value": {"type": "number"}, "observed_at": {"type": "string"}, "threshold_at_capture": {"type": "number"}, "recorded_at": {"type": "string"}}},
        "models.ReadingPage": {"type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/models.SensorReading"}}, "total": {"type": "integer"}}},
        "models.ThresholdSetting": {"type": "object",
            "properties": {"id": {"type": "string"}, "value": {"type": "number"}, "note": {"type": "string"}, "created_by": {"type": "string"}, "created_at": {"type": "string"}}},
        "models.Evaluation": {"type": "object",
            "properties": {"accepted": {"type": "boolean"}, "reason": {"type": "string"}, "threshold": {"$ref": "#/definitions/models.ThresholdSetting"}, "reading": {"$ref": "#/definitions/models.SensorReading"}}},
        "models.RawReading": {"type": "object",
            "properties": {"value": {"type": "number"}, "observed_at": {"type": "string"}, "received_at": {"type": "string"}}},
        "models.ConnectionState": {"type": "object",
            "properties": {"state": {"type": "string", "enum": ["connecting", "connected", "disconnected", "error"]}, "reason": {"type": "string"}, "since": {"type": "string"}}},
        "models.LiveStatus": {"type": "object",
            "properties": {"connection": {"$ref": "#/definitions/models.ConnectionState"}, "latest": {"$ref": "#/definitions/models.RawReading"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "thermowatch API",
	Description:      "Temperature readings filtered by an operator-set threshold.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
