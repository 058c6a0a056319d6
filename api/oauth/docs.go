// Package oauth registers the service's OpenAPI document with swag so the
// swagger UI can serve it.
package oauth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Sable Auth",
            "url": "https://github.com/sableauth/sable"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/.well-known/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "description": "Returns the JSON Web Key Set used to verify issued JWTs.",
                "responses": {
                    "200": {
                        "description": "The JSON Web Key Set",
                        "schema": {"$ref": "#/definitions/authsdk.JWKSResponse"}
                    }
                }
            }
        },
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information.",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "description": "Readiness probe endpoint returning service health status and checks for critical dependencies.",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    },
                    "503": {
                        "description": "status, uptime, version, checks - service not ready",
                        "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}
                    }
                }
            }
        },
        "/v1/oauth2/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["OAuth2"],
                "summary": "OAuth2 Token Endpoint",
                "description": "Issues access and refresh tokens using OAuth2 grant types (authorization_code, urn:ietf:params:oauth:grant-type:device_code, refresh_token, client_credentials, password, urn:ietf:params:oauth:grant-type:jwt-bearer).",
                "parameters": [
                    {"type": "string", "name": "grant_type", "in": "formData", "required": true, "description": "Grant type"},
                    {"type": "string", "name": "client_id", "in": "formData", "description": "Client identifier (or HTTP Basic auth)"},
                    {"type": "string", "name": "client_secret", "in": "formData", "description": "Client secret (confidential clients)"},
                    {"type": "string", "name": "code", "in": "formData", "description": "Authorization code (authorization_code grant)"},
                    {"type": "string", "name": "redirect_uri", "in": "formData", "description": "Redirect URI (authorization_code grant)"},
                    {"type": "string", "name": "code_verifier", "in": "formData", "description": "PKCE code_verifier (authorization_code grant)"},
                    {"type": "string", "name": "device_code", "in": "formData", "description": "Device code (device_code grant)"},
                    {"type": "string", "name": "refresh_token", "in": "formData", "description": "Refresh token (refresh_token grant)"},
                    {"type": "string", "name": "username", "in": "formData", "description": "Resource owner username (password grant)"},
                    {"type": "string", "name": "password", "in": "formData", "description": "Resource owner password (password grant)"},
                    {"type": "string", "name": "assertion", "in": "formData", "description": "Signed JWT assertion (jwt-bearer grant)"},
                    {"type": "string", "name": "scope", "in": "formData", "description": "Space-delimited list of scopes"}
                ],
                "responses": {
                    "200": {
                        "description": "access_token, token_type, expires_in, scope, refresh_token, id_token",
                        "schema": {"$ref": "#/definitions/authsdk.TokenResponse"},
                        "headers": {
                            "Cache-Control": {"type": "string", "description": "no-store"},
                            "Pragma": {"type": "string", "description": "no-cache"}
                        }
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "401": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    },
                    "500": {
                        "description": "error, error_description",
                        "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "scope": {"type": "string"},
                "refresh_token": {"type": "string"},
                "id_token": {"type": "string"}
            }
        },
        "authsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "authsdk.JWKSResponse": {
            "type": "object",
            "properties": {
                "keys": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/jwtx.JWK"}
                }
            }
        },
        "jwtx.JWK": {
            "type": "object",
            "properties": {
                "kty": {"type": "string"},
                "use": {"type": "string"},
                "key_ops": {"type": "array", "items": {"type": "string"}},
                "alg": {"type": "string"},
                "kid": {"type": "string"},
                "n": {"type": "string"},
                "e": {"type": "string"},
                "crv": {"type": "string"},
                "x": {"type": "string"},
                "y": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "signer": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Sable OAuth 2.0 Token Service API",
	Description:      "OAuth 2.0 Authorization Server token endpoint.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
