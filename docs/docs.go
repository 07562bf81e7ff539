// Package docs registers the REST API description served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Open a session with PNO and password", "security": [],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Close the current session", "responses": {"204": {"description": "No Content"}}}
        },
        "/aircraft/{id}": {
            "get": {"tags": ["aircraft"], "summary": "Get aircraft with telemetry", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/before-flying-service": {
            "post": {"tags": ["bfs"], "summary": "Initiate a BFS record", "responses": {"201": {"description": "Created"}}}
        },
        "/before-flying-service/{id}": {
            "get": {"tags": ["bfs"], "summary": "Get a BFS record", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/before-flying-service/{id}/fsi_initial_auth": {
            "post": {"tags": ["bfs"], "summary": "FSI initial authentication", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        },
        "/before-flying-service/{id}/assign_personnel": {
            "post": {"tags": ["bfs"], "summary": "Assign trade personnel", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/before-flying-service/{id}/sign_tradesman": {
            "post": {"tags": ["bfs"], "summary": "Sign a trade slot", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/before-flying-service/{id}/sign_supervisor": {
            "post": {"tags": ["bfs"], "summary": "Supervisor signature", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        },
        "/before-flying-service/{id}/sign_fsi": {
            "post": {"tags": ["bfs"], "summary": "FSI final approval", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        },
        "/pilot-acceptance": {
            "post": {"tags": ["acceptance"], "summary": "Create a pilot acceptance for an approved BFS", "responses": {"201": {"description": "Created"}}}
        },
        "/pilot-acceptance/{id}": {
            "get": {"tags": ["acceptance"], "summary": "Get a pilot acceptance", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/pilot-acceptance/{id}/sign_pilot": {
            "post": {"tags": ["acceptance"], "summary": "Pilot accepts the aircraft", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        },
        "/pilot-acceptance/{id}/reject": {
            "post": {"tags": ["acceptance"], "summary": "Pilot rejects the aircraft", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/post-flying": {
            "post": {"tags": ["post-flying"], "summary": "Create a post flying record", "responses": {"201": {"description": "Created"}}}
        },
        "/post-flying/{id}": {
            "get": {"tags": ["post-flying"], "summary": "Get a post flying record", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}
        },
        "/post-flying/{id}/sign_pilot": {
            "post": {"tags": ["post-flying"], "summary": "Pilot signs the post flying record", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        },
        "/post-flying/{id}/sign_engineer": {
            "post": {"tags": ["post-flying"], "summary": "Engineer closes the post flying record", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/pin"}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "parameters": {
        "id": {"type": "integer", "name": "id", "in": "path", "required": true},
        "pin": {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/pinRequest"}}
    },
    "definitions": {
        "errorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}}},
        "loginRequest": {"type": "object", "properties": {"pno": {"type": "string"}, "password": {"type": "string"}}},
        "pinRequest": {"type": "object", "properties": {"pin": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Flightline API",
	Description:      "Before Flying Service, pilot acceptance and post flying sign-off.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
